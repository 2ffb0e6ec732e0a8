package chatbot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/visheshsingal/hitech/llm"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func listing(title string, bhk int, price float64, city string, age time.Duration) models.Property {
	return models.Property{
		ID:        primitive.NewObjectID(),
		Title:     title,
		BHK:       bhk,
		Bathrooms: bhk,
		Price:     price,
		City:      city,
		Status:    models.StatusActive,
		CreatedAt: base.Add(-age),
	}
}

// memFinder evaluates PropertyQuery the way the Mongo store does.
type memFinder struct {
	properties []models.Property
	queries    []store.PropertyQuery
	err        error
}

func (f *memFinder) Find(_ context.Context, q store.PropertyQuery) ([]models.Property, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}

	var out []models.Property
	for _, p := range f.properties {
		if len(q.BHK) > 0 && !containsInt(q.BHK, p.BHK) {
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
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, s := range q.Sort {
			a, b := sortValue(out[i], s.Field), sortValue(out[j], s.Field)
			if a == b {
				continue
			}
			if s.Desc {
				return a > b
			}
			return a < b
		}
		return false
	})

	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func sortValue(p models.Property, field string) float64 {
	switch field {
	case "price":
		return p.Price
	case "bhk":
		return float64(p.BHK)
	case "createdAt":
		return float64(p.CreatedAt.UnixNano())
	}
	return 0
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

type fakeGenerator struct {
	reply    string
	err      error
	messages []llm.Message
}

func (g *fakeGenerator) Generate(_ context.Context, messages []llm.Message) (string, error) {
	g.messages = messages
	return g.reply, g.err
}

var errStoreDown = errors.New("server selection timeout")

var testCompany = Company{
	Name:     "Hi-Tech Homes",
	Phone:    "+91 98765 43210",
	Email:    "info@hitechhomes.com",
	Location: "Mumbai, India",
}
