package store

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SortField struct {
	Field string
	Desc  bool
}

var (
	SortNewest   = []SortField{{Field: "createdAt", Desc: true}}
	SortPriceAsc = []SortField{{Field: "price"}}
)

// PropertyQuery is a structured property search. Zero values mean "no
// constraint". A single BHK is matched by equality, several by $in.
type PropertyQuery struct {
	BHK        []int
	MinPrice   *float64
	MaxPrice   *float64
	City       string
	Status     string
	Collection string
	Sort       []SortField
	Skip       int64
	Limit      int64
}

func (q PropertyQuery) Filter() bson.M {
	filter := bson.M{}

	switch len(q.BHK) {
	case 0:
	case 1:
		filter["bhk"] = q.BHK[0]
	default:
		filter["bhk"] = bson.M{"$in": q.BHK}
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}

	if q.City != "" {
		filter["city"] = bson.M{"$regex": regexp.QuoteMeta(q.City), "$options": "i"}
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Collection != "" {
		filter["collections"] = q.Collection
	}
	return filter
}

func (q PropertyQuery) SortDoc() bson.D {
	sort := make(bson.D, 0, len(q.Sort))
	for _, s := range q.Sort {
		dir := 1
		if s.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: s.Field, Value: dir})
	}
	return sort
}

func (q PropertyQuery) findOptions() *options.FindOptions {
	opts := options.Find()
	if len(q.Sort) > 0 {
		opts.SetSort(q.SortDoc())
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}

func Float(v float64) *float64 { return &v }
