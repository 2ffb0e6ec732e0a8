// Package properties is the listing catalog: paginated reads, curated
// collections, manual tags and admin writes with media uploads.
package properties

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/media"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/store"
	"github.com/visheshsingal/hitech/utils"
)

const (
	DefaultPageSize       = 10
	DefaultCollectionSize = 20
	MaxPageSize           = 100

	catalogPrefix = "catalog:"
)

type Store interface {
	Find(ctx context.Context, q store.PropertyQuery) ([]models.Property, error)
	Count(ctx context.Context, q store.PropertyQuery) (int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	Insert(ctx context.Context, p *models.Property) error
	Replace(ctx context.Context, p *models.Property) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	Cities(ctx context.Context) ([]string, error)
	CollectionSampleImage(ctx context.Context, key string) (string, error)
	TagSummaries(ctx context.Context, field string) ([]models.TagSummary, error)
	FindTagImage(ctx context.Context, field, title string) (*models.MediaRef, error)
}

var sortKeys = map[string][]store.SortField{
	"price_asc":  {{Field: "price"}},
	"price_desc": {{Field: "price", Desc: true}},
	"bhk_asc":    {{Field: "bhk"}},
	"bhk_desc":   {{Field: "bhk", Desc: true}},
}

type Service struct {
	store Store
	media media.Host
	cache utils.Cache
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

func NewService(s Store, host media.Host, cache utils.Cache, ttl time.Duration, log *slog.Logger) *Service {
	if cache == nil {
		cache = utils.NoopCache{}
	}
	return &Service{store: s, media: host, cache: cache, ttl: ttl, log: log, now: time.Now}
}

// Page is a 1-based page request. Zero values take defaults.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalize(defaultLimit int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

type FilterParams struct {
	City     string
	MinPrice *float64
	MaxPrice *float64
	BHK      *int
	Sort     string
	Page
}

func (s *Service) List(ctx context.Context, page Page) (*models.PropertyPage, error) {
	return s.page(ctx, store.PropertyQuery{Sort: store.SortNewest}, page.normalize(DefaultPageSize))
}

func (s *Service) Get(ctx context.Context, id string) (*models.Property, error) {
	oid, err := utils.ParseObjectID(id, "property")
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, oid)
}

// Filter searches by city substring, price range and exact bhk. Unknown sort
// keys fall back to newest first.
func (s *Service) Filter(ctx context.Context, f FilterParams) (*models.PropertyPage, error) {
	q := store.PropertyQuery{
		City:     strings.TrimSpace(f.City),
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
		Sort:     store.SortNewest,
	}
	if f.BHK != nil {
		q.BHK = []int{*f.BHK}
	}
	if sort, ok := sortKeys[f.Sort]; ok {
		q.Sort = sort
	}
	return s.page(ctx, q, f.Page.normalize(DefaultPageSize))
}

func (s *Service) page(ctx context.Context, q store.PropertyQuery, p Page) (*models.PropertyPage, error) {
	q.Skip = int64((p.Page - 1) * p.Limit)
	q.Limit = int64(p.Limit)

	var (
		data  []models.Property
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data, err = s.store.Find(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.store.Count(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.PropertyPage{
		Count: len(data),
		Total: total,
		Page:  p.Page,
		Pages: int(math.Ceil(float64(total) / float64(p.Limit))),
		Data:  data,
	}, nil
}

func (s *Service) Cities(ctx context.Context) ([]string, error) {
	return cached(ctx, s, catalogPrefix+"cities", func() ([]string, error) {
		return s.store.Cities(ctx)
	})
}

// CuratedCollections returns one card per collection key with its active
// count and a sample image, falling back to the collection default.
func (s *Service) CuratedCollections(ctx context.Context) ([]models.CollectionSummary, error) {
	return cached(ctx, s, catalogPrefix+"collections", func() ([]models.CollectionSummary, error) {
		out := make([]models.CollectionSummary, len(models.Collections))
		g, gctx := errgroup.WithContext(ctx)
		for i, col := range models.Collections {
			i, col := i, col
			g.Go(func() error {
				n, err := s.store.Count(gctx, store.PropertyQuery{Collection: col.Key, Status: models.StatusActive})
				if err != nil {
					return err
				}
				image, err := s.store.CollectionSampleImage(gctx, col.Key)
				if err != nil {
					return err
				}
				if image == "" {
					image = col.DefaultImage
				}
				out[i] = models.CollectionSummary{
					Key:        col.Key,
					Title:      col.Title,
					Count:      strconv.FormatInt(n, 10) + " Properties",
					Image:      image,
					Properties: n,
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	})
}

func (s *Service) CollectionProperties(ctx context.Context, key string, page Page) (*models.PropertyPage, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !models.IsCollectionKey(key) {
		return nil, apperr.Validation("Unknown collection key: %s. Valid keys: %s", key, strings.Join(models.CollectionKeys(), ", "))
	}
	page = page.normalize(DefaultCollectionSize)

	cacheKey := utils.GenerateQueryCacheKey(catalogPrefix+"collection", map[string]string{
		"key":   key,
		"page":  strconv.Itoa(page.Page),
		"limit": strconv.Itoa(page.Limit),
	})
	return cached(ctx, s, cacheKey, func() (*models.PropertyPage, error) {
		q := store.PropertyQuery{Collection: key, Status: models.StatusActive, Sort: store.SortNewest}
		return s.page(ctx, q, page)
	})
}

func (s *Service) FeaturedLocations(ctx context.Context) ([]models.TagSummary, error) {
	return cached(ctx, s, catalogPrefix+"featured-locations", func() ([]models.TagSummary, error) {
		return s.store.TagSummaries(ctx, store.TagFeaturedLocation)
	})
}

func (s *Service) CuratedTitles(ctx context.Context) ([]models.TagSummary, error) {
	return cached(ctx, s, catalogPrefix+"curated-titles", func() ([]models.TagSummary, error) {
		return s.store.TagSummaries(ctx, store.TagCuratedProperty)
	})
}

// cached serves key from the cache, loading and storing it on a miss. Cache
// failures are logged and never fail the read.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	var hit T
	err := s.cache.GetJSON(ctx, key, &hit)
	if err == nil {
		return hit, nil
	}
	if !errors.Is(err, utils.ErrCacheMiss) {
		s.log.Warn("catalog cache read failed", "key", key, "error", err)
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if err := s.cache.SetJSON(ctx, key, v, s.ttl); err != nil {
		s.log.Warn("catalog cache write failed", "key", key, "error", err)
	}
	return v, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, catalogPrefix); err != nil {
		s.log.Warn("catalog cache flush failed", "error", err)
	}
}
