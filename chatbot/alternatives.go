package chatbot

import (
	"context"
	"log/slog"

	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/store"
)

type strategy struct {
	name    string
	applies func(Criteria) bool
	query   func(Criteria) store.PropertyQuery
}

// strategies are tried in order; the first to return anything wins.
var strategies = []strategy{
	{
		name:    "relaxed_price",
		applies: func(c Criteria) bool { return c.BHK != nil && c.MaxPrice != nil },
		query: func(c Criteria) store.PropertyQuery {
			return store.PropertyQuery{
				BHK:      []int{*c.BHK},
				MaxPrice: store.Float(*c.MaxPrice * 1.2),
				City:     c.City,
				Sort:     store.SortPriceAsc,
			}
		},
	},
	{
		name:    "adjacent_bhk",
		applies: func(c Criteria) bool { return c.BHK != nil && c.MaxPrice != nil },
		query: func(c Criteria) store.PropertyQuery {
			return store.PropertyQuery{
				BHK:      adjacent(*c.BHK),
				MaxPrice: c.MaxPrice,
				City:     c.City,
				Sort:     []store.SortField{{Field: "bhk"}, {Field: "price"}},
			}
		},
	},
	{
		name:    "same_bhk_any_price",
		applies: func(c Criteria) bool { return c.BHK != nil && c.City != "" },
		query: func(c Criteria) store.PropertyQuery {
			return store.PropertyQuery{BHK: []int{*c.BHK}, City: c.City, Sort: store.SortPriceAsc}
		},
	},
	{
		name:    "wider_budget",
		applies: func(c Criteria) bool { return c.MaxPrice != nil },
		query: func(c Criteria) store.PropertyQuery {
			return store.PropertyQuery{MaxPrice: store.Float(*c.MaxPrice * 1.3), Sort: store.SortPriceAsc}
		},
	},
	{
		name:    "latest",
		applies: func(Criteria) bool { return true },
		query: func(Criteria) store.PropertyQuery {
			return store.PropertyQuery{Sort: store.SortNewest}
		},
	},
}

func adjacent(bhk int) []int {
	out := make([]int, 0, 2)
	if bhk > 1 {
		out = append(out, bhk-1)
	}
	return append(out, bhk+1)
}

type Alternatives struct {
	finder PropertyFinder
	log    *slog.Logger
}

func NewAlternatives(finder PropertyFinder, log *slog.Logger) *Alternatives {
	return &Alternatives{finder: finder, log: log}
}

// Suggest re-reads the message and returns up to three near matches from
// the first strategy that finds any. Price floors from a range are ignored.
func (a *Alternatives) Suggest(ctx context.Context, text string) []models.Property {
	c := Extract(text)
	c.MinPrice = nil

	for _, s := range strategies {
		if !s.applies(c) {
			continue
		}
		q := s.query(c)
		q.Limit = alternativeLimit

		found, err := a.finder.Find(ctx, q)
		if err != nil {
			a.log.WarnContext(ctx, "alternative lookup failed", "strategy", s.name, "error", err)
			return nil
		}
		if len(found) > 0 {
			a.log.DebugContext(ctx, "alternatives found", "strategy", s.name, "count", len(found))
			return found
		}
	}
	return nil
}
