package chatbot

import (
	"context"
	"log/slog"

	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/store"
)

const (
	matchLimit       = 5
	alternativeLimit = 3
)

// PropertyFinder runs a structured query against the property catalog.
type PropertyFinder interface {
	Find(ctx context.Context, q store.PropertyQuery) ([]models.Property, error)
}

type Matcher struct {
	finder PropertyFinder
	log    *slog.Logger
}

func NewMatcher(finder PropertyFinder, log *slog.Logger) *Matcher {
	return &Matcher{finder: finder, log: log}
}

// Match returns up to five properties for c, newest first. Lookup failures
// are logged and reported as no match.
func (m *Matcher) Match(ctx context.Context, c Criteria) []models.Property {
	if !c.HasIntent() {
		return nil
	}

	q := store.PropertyQuery{Sort: store.SortNewest, Limit: matchLimit}
	if !c.Empty() {
		q.MinPrice = c.MinPrice
		q.MaxPrice = c.MaxPrice
		q.City = c.City
		if c.BHK != nil {
			q.BHK = []int{*c.BHK}
		}
	}

	properties, err := m.finder.Find(ctx, q)
	if err != nil {
		m.log.WarnContext(ctx, "property match failed", "error", err)
		return nil
	}
	return properties
}
