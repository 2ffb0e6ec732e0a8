package properties

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/media"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/store"
	"github.com/visheshsingal/hitech/utils"
)

type memStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Property
	order []primitive.ObjectID
	finds int
	// writeErr fails Replace and Delete.
	writeErr error
}

func newMemStore(props ...models.Property) *memStore {
	s := &memStore{items: map[primitive.ObjectID]models.Property{}}
	for _, p := range props {
		p := p
		_ = s.Insert(context.Background(), &p)
	}
	return s
}

func (s *memStore) match(q store.PropertyQuery) []models.Property {
	var out []models.Property
	for _, id := range s.order {
		p := s.items[id]
		if len(q.BHK) > 0 && p.BHK != q.BHK[0] {
			continue
		}
		if q.MinPrice != nil && p.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && p.Price > *q.MaxPrice {
			continue
		}
		if q.City != "" && !strings.Contains(strings.ToLower(p.City), strings.ToLower(q.City)) {
			continue
		}
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		if q.Collection != "" && !contains(p.Collections, q.Collection) {
			continue
		}
		out = append(out, p)
	}
	if len(q.Sort) > 0 {
		f := q.Sort[0]
		sort.SliceStable(out, func(i, j int) bool {
			var less bool
			switch f.Field {
			case "price":
				less = out[i].Price < out[j].Price
			case "bhk":
				less = out[i].BHK < out[j].BHK
			default:
				less = out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			if f.Desc {
				return !less && !equalOn(f.Field, out[i], out[j])
			}
			return less
		})
	}
	return out
}

func equalOn(field string, a, b models.Property) bool {
	switch field {
	case "price":
		return a.Price == b.Price
	case "bhk":
		return a.BHK == b.BHK
	}
	return a.CreatedAt.Equal(b.CreatedAt)
}

func (s *memStore) Find(_ context.Context, q store.PropertyQuery) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	out := s.match(q)
	if q.Skip > 0 {
		if int(q.Skip) >= len(out) {
			return []models.Property{}, nil
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && int(q.Limit) < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *memStore) Count(_ context.Context, q store.PropertyQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.match(q))), nil
}

func (s *memStore) Get(_ context.Context, id primitive.ObjectID) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFound("Property")
	}
	p.Images = append([]models.MediaRef(nil), p.Images...)
	return &p, nil
}

func (s *memStore) Insert(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.items[p.ID] = *p
	s.order = append(s.order, p.ID)
	return nil
}

func (s *memStore) Replace(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.items[p.ID]; !ok {
		return apperr.NotFound("Property")
	}
	s.items[p.ID] = *p
	return nil
}

func (s *memStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.items[id]; !ok {
		return apperr.NotFound("Property")
	}
	delete(s.items, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memStore) ToggleFeatured(_ context.Context, id primitive.ObjectID) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFound("Property")
	}
	p.Featured = !p.Featured
	s.items[id] = p
	return &p, nil
}

func (s *memStore) Cities(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range s.items {
		if !seen[p.City] {
			seen[p.City] = true
			out = append(out, p.City)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *memStore) CollectionSampleImage(_ context.Context, key string) (string, error) {
	for _, p := range s.match(store.PropertyQuery{Collection: key, Status: models.StatusActive}) {
		if url := p.FirstImageURL(); url != "" {
			return url, nil
		}
	}
	return "", nil
}

func (s *memStore) TagSummaries(_ context.Context, field string) ([]models.TagSummary, error) {
	return []models.TagSummary{}, nil
}

func (s *memStore) FindTagImage(_ context.Context, field, title string) (*models.MediaRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items {
		tag := p.FeaturedLocation
		if field == store.TagCuratedProperty {
			tag = p.CuratedProperty
		}
		if tag != nil && tag.Title == title && tag.Image.URL != "" {
			img := tag.Image
			return &img, nil
		}
	}
	return nil, nil
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// fakeHost records uploads; uploads whose body equals failOn fail.
type fakeHost struct {
	mu       sync.Mutex
	n        int
	failOn   string
	uploaded []string
	deleted  map[media.Kind][]string
}

func (h *fakeHost) Upload(_ context.Context, r io.Reader, kind media.Kind) (models.MediaRef, error) {
	body, _ := io.ReadAll(r)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failOn != "" && string(body) == h.failOn {
		return models.MediaRef{}, apperr.Upstream("failed to upload "+string(kind), errors.New("503"))
	}
	h.n++
	id := fmt.Sprintf("%s-%d-%s", kind, h.n, body)
	h.uploaded = append(h.uploaded, id)
	return models.MediaRef{URL: "https://cdn.test/" + id, PublicID: id}, nil
}

func (h *fakeHost) Delete(_ context.Context, id string, kind media.Kind) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.deleted == nil {
		h.deleted = map[media.Kind][]string{}
	}
	h.deleted[kind] = append(h.deleted[kind], id)
	return nil
}

func (h *fakeHost) DeleteMany(ctx context.Context, ids []string, kind media.Kind) error {
	for _, id := range ids {
		_ = h.Delete(ctx, id, kind)
	}
	return nil
}

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	flushes int
}

func (c *memCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return utils.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *memCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[string][]byte{}
	}
	c.data[key] = b
	return nil
}

func (c *memCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func file(name, body string) Upload {
	return Upload{Filename: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}}
}

func filePtr(name, body string) *Upload {
	u := file(name, body)
	return &u
}

func newTestService(s *memStore, h *fakeHost, c *memCache) *Service {
	svc := NewService(s, h, c, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}
