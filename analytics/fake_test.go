package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/store"
)

// memLog is an in-memory event log evaluated like the Mongo pipelines.
type memLog struct {
	mu     sync.Mutex
	events []models.AnalyticsEvent
	err    error
	since  time.Time
}

func (l *memLog) Insert(_ context.Context, e *models.AnalyticsEvent) error {
	if l.err != nil {
		return l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, *e)
	return nil
}

func (l *memLog) Count(_ context.Context, f store.EventFilter) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for _, e := range l.events {
		if len(f.Types) > 0 && !contains(f.Types, e.EventType) {
			continue
		}
		if f.MinPrice != nil || f.BelowPrice != nil {
			if e.Price == nil {
				continue
			}
			if f.MinPrice != nil && *e.Price < *f.MinPrice {
				continue
			}
			if f.BelowPrice != nil && *e.Price >= *f.BelowPrice {
				continue
			}
		}
		n++
	}
	return n, nil
}

func (l *memLog) TopProperties(_ context.Context, eventType string, limit int) ([]models.TopProperty, error) {
	counts := map[primitive.ObjectID]*models.TopProperty{}
	for _, e := range l.events {
		if e.EventType != eventType || e.PropertyID == nil {
			continue
		}
		tp, ok := counts[*e.PropertyID]
		if !ok {
			tp = &models.TopProperty{PropertyID: *e.PropertyID}
			counts[*e.PropertyID] = tp
		}
		tp.Count++
		if e.Timestamp.After(tp.LastActivity) {
			tp.LastActivity = e.Timestamp
		}
	}
	out := []models.TopProperty{}
	for _, tp := range counts {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *memLog) TopLocations(_ context.Context, limit int) ([]models.TopLocation, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	byCity := map[string]*models.TopLocation{}
	for _, e := range l.events {
		if e.City == nil || *e.City == "" {
			continue
		}
		loc, ok := byCity[*e.City]
		if !ok {
			loc = &models.TopLocation{City: *e.City}
			byCity[*e.City] = loc
		}
		switch e.EventType {
		case models.EventView:
			loc.Views++
		case models.EventClick:
			loc.Clicks++
		}
		loc.Total++
	}
	out := make([]models.TopLocation, 0, len(byCity))
	for _, loc := range byCity {
		out = append(out, *loc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].City < out[j].City
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *memLog) BHKDistribution(_ context.Context) ([]models.BHKCount, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := map[int]int64{}
	for _, e := range l.events {
		if e.BHK == nil || !contains(engagementTypes, e.EventType) {
			continue
		}
		counts[*e.BHK]++
	}
	out := make([]models.BHKCount, 0, len(counts))
	for bhk, n := range counts {
		out = append(out, models.BHKCount{BHK: bhk, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BHK < out[j].BHK })
	return out, nil
}

func (l *memLog) DailyCounts(_ context.Context, since time.Time, types []string) ([]models.DailyCount, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.since = since
	counts := map[[2]string]int64{}
	for _, e := range l.events {
		if e.Timestamp.Before(since) || !contains(types, e.EventType) {
			continue
		}
		counts[[2]string{e.Timestamp.UTC().Format("2006-01-02"), e.EventType}]++
	}
	out := []models.DailyCount{}
	for k, n := range counts {
		out = append(out, models.DailyCount{Day: k[0], EventType: k[1], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].EventType < out[j].EventType
	})
	return out, nil
}

func (l *memLog) TopCity(_ context.Context) (models.CityCount, bool, error) {
	if l.err != nil {
		return models.CityCount{}, false, l.err
	}
	counts := map[string]int64{}
	for _, e := range l.events {
		if e.City != nil && *e.City != "" {
			counts[*e.City]++
		}
	}
	var best models.CityCount
	for c, n := range counts {
		if n > best.Count || (n == best.Count && c < best.City) {
			best = models.CityCount{City: c, Count: n}
		}
	}
	return best, best.City != "", nil
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

type memProperties map[primitive.ObjectID]models.Property

func (m memProperties) Get(_ context.Context, id primitive.ObjectID) (*models.Property, error) {
	p, ok := m[id]
	if !ok {
		return nil, apperr.NotFound("Property")
	}
	return &p, nil
}

func event(typ string, price float64, at time.Time) models.AnalyticsEvent {
	return models.AnalyticsEvent{EventType: typ, Price: &price, Timestamp: at}
}

func located(typ, city string, bhk int) models.AnalyticsEvent {
	return models.AnalyticsEvent{EventType: typ, City: &city, BHK: &bhk, Timestamp: now}
}
