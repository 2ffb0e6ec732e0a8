package analytics

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/store"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultDays  = 30
	MaxDays      = 365
)

type EventReader interface {
	Count(ctx context.Context, f store.EventFilter) (int64, error)
	TopProperties(ctx context.Context, eventType string, limit int) ([]models.TopProperty, error)
	TopLocations(ctx context.Context, limit int) ([]models.TopLocation, error)
	BHKDistribution(ctx context.Context) ([]models.BHKCount, error)
	DailyCounts(ctx context.Context, since time.Time, types []string) ([]models.DailyCount, error)
	TopCity(ctx context.Context) (models.CityCount, bool, error)
}

// Bucket is a price band, Min inclusive and Max exclusive. A nil Max is
// unbounded.
type Bucket struct {
	Label string
	Min   float64
	Max   *float64
}

func bound(v float64) *float64 { return &v }

var PriceBuckets = []Bucket{
	{Label: "Under 50L", Min: 0, Max: bound(5_000_000)},
	{Label: "50L - 1Cr", Min: 5_000_000, Max: bound(10_000_000)},
	{Label: "1Cr - 2Cr", Min: 10_000_000, Max: bound(20_000_000)},
	{Label: "2Cr - 5Cr", Min: 20_000_000, Max: bound(50_000_000)},
	{Label: "Above 5Cr", Min: 50_000_000},
}

var engagementTypes = []string{models.EventView, models.EventClick}

// Aggregator computes read-only reports over the event log.
type Aggregator struct {
	events EventReader
	now    func() time.Time
}

func NewAggregator(events EventReader) *Aggregator {
	return &Aggregator{events: events, now: time.Now}
}

func (a *Aggregator) TopProperties(ctx context.Context, eventType string, limit int) ([]models.TopProperty, error) {
	if eventType == "" {
		eventType = models.EventView
	}
	if !models.ValidEventType(eventType) {
		return nil, apperr.Validation("eventType must be one of view, click, filter")
	}
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	return a.events.TopProperties(ctx, eventType, limit)
}

func (a *Aggregator) TopLocations(ctx context.Context, limit int) ([]models.TopLocation, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	return a.events.TopLocations(ctx, limit)
}

// PriceDistribution counts view and click events per fixed price band, one
// count query per band.
func (a *Aggregator) PriceDistribution(ctx context.Context) ([]models.PriceBucket, error) {
	out := make([]models.PriceBucket, len(PriceBuckets))
	g, ctx := errgroup.WithContext(ctx)
	for i, b := range PriceBuckets {
		i, b := i, b
		g.Go(func() error {
			n, err := a.events.Count(ctx, store.EventFilter{
				Types:      engagementTypes,
				MinPrice:   store.Float(b.Min),
				BelowPrice: b.Max,
			})
			if err != nil {
				return err
			}
			out[i] = models.PriceBucket{Range: b.Label, Count: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Aggregator) BHKDistribution(ctx context.Context) ([]models.BHKCount, error) {
	return a.events.BHKDistribution(ctx)
}

// Engagement returns per-day view and click counts for the trailing window.
// Days without any view or click are omitted.
func (a *Aggregator) Engagement(ctx context.Context, days int) ([]models.EngagementDay, error) {
	if days == 0 {
		days = DefaultDays
	}
	if days < 1 || days > MaxDays {
		return nil, apperr.Validation("days must be between 1 and %d", MaxDays)
	}

	since := a.now().UTC().AddDate(0, 0, -days)
	rows, err := a.events.DailyCounts(ctx, since, engagementTypes)
	if err != nil {
		return nil, err
	}
	return pivotDaily(rows), nil
}

func pivotDaily(rows []models.DailyCount) []models.EngagementDay {
	out := []models.EngagementDay{}
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.Day]
		if !ok {
			i = len(out)
			index[r.Day] = i
			out = append(out, models.EngagementDay{Date: r.Day})
		}
		switch r.EventType {
		case models.EventView:
			out[i].Views += r.Count
		case models.EventClick:
			out[i].Clicks += r.Count
		}
	}
	return out
}

func (a *Aggregator) Summary(ctx context.Context) (*models.AnalyticsSummary, error) {
	var (
		views, clicks int64
		top           models.CityCount
		found         bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = a.events.Count(gctx, store.EventFilter{Types: []string{models.EventView}})
		return err
	})
	g.Go(func() (err error) {
		clicks, err = a.events.Count(gctx, store.EventFilter{Types: []string{models.EventClick}})
		return err
	})
	g.Go(func() (err error) {
		top, found, err = a.events.TopCity(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &models.AnalyticsSummary{
		TotalViews:     views,
		TotalClicks:    clicks,
		TopCity:        "N/A",
		EngagementRate: EngagementRate(views, clicks),
	}
	if found {
		s.TopCity = top.City
		s.TopCityCount = top.Count
	}
	return s, nil
}

// EngagementRate is clicks per hundred views to two decimals, 0 without
// views.
func EngagementRate(views, clicks int64) float64 {
	if views == 0 {
		return 0
	}
	return math.Round(float64(clicks)/float64(views)*100*100) / 100
}

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultLimit, nil
	}
	if limit < 1 || limit > MaxLimit {
		return 0, apperr.Validation("limit must be between 1 and %d", MaxLimit)
	}
	return limit, nil
}
