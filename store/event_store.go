package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
)

// EventFilter narrows a count over the event log. MinPrice is inclusive,
// BelowPrice exclusive.
type EventFilter struct {
	Types      []string
	MinPrice   *float64
	BelowPrice *float64
}

func (f EventFilter) Filter() bson.M {
	filter := bson.M{}
	switch len(f.Types) {
	case 0:
	case 1:
		filter["eventType"] = f.Types[0]
	default:
		filter["eventType"] = bson.M{"$in": f.Types}
	}
	if f.MinPrice != nil || f.BelowPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.BelowPrice != nil {
			price["$lt"] = *f.BelowPrice
		}
		filter["price"] = price
	}
	return filter
}

// EventStore is the append-only analytics log. Nothing here updates or
// deletes events.
type EventStore struct {
	collection *mongo.Collection
	properties string
}

// NewEventStore wires the log collection. properties names the collection
// joined by TopProperties.
func NewEventStore(collection *mongo.Collection, properties string) *EventStore {
	return &EventStore{collection: collection, properties: properties}
}

func (s *EventStore) Insert(ctx context.Context, e *models.AnalyticsEvent) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if _, err := s.collection.InsertOne(ctx, e); err != nil {
		return apperr.Store("failed to record event", err)
	}
	return nil
}

func (s *EventStore) Count(ctx context.Context, f EventFilter) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, f.Filter())
	if err != nil {
		return 0, apperr.Store("failed to count events", err)
	}
	return n, nil
}

func (s *EventStore) TopProperties(ctx context.Context, eventType string, limit int) ([]models.TopProperty, error) {
	out := []models.TopProperty{}
	if err := s.aggregate(ctx, TopPropertiesPipeline(eventType, limit, s.properties), &out, "top properties"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *EventStore) TopLocations(ctx context.Context, limit int) ([]models.TopLocation, error) {
	out := []models.TopLocation{}
	if err := s.aggregate(ctx, TopLocationsPipeline(limit), &out, "top locations"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *EventStore) BHKDistribution(ctx context.Context) ([]models.BHKCount, error) {
	out := []models.BHKCount{}
	if err := s.aggregate(ctx, BHKDistributionPipeline(), &out, "bhk distribution"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *EventStore) DailyCounts(ctx context.Context, since time.Time, types []string) ([]models.DailyCount, error) {
	out := []models.DailyCount{}
	if err := s.aggregate(ctx, DailyCountsPipeline(since, types), &out, "engagement"); err != nil {
		return nil, err
	}
	return out, nil
}

// TopCity returns the city with the most events of any type. ok is false
// when no event carries a city.
func (s *EventStore) TopCity(ctx context.Context) (models.CityCount, bool, error) {
	var rows []models.CityCount
	if err := s.aggregate(ctx, TopCityPipeline(), &rows, "top city"); err != nil {
		return models.CityCount{}, false, err
	}
	if len(rows) == 0 {
		return models.CityCount{}, false, nil
	}
	return rows[0], true, nil
}

func (s *EventStore) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}, what string) error {
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return apperr.Store("failed to aggregate "+what, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return apperr.Store("failed to decode "+what, err)
	}
	return nil
}

var nonEmptyCity = bson.M{"city": bson.M{"$nin": bson.A{nil, ""}}}

func TopPropertiesPipeline(eventType string, limit int, properties string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"eventType": eventType, "propertyId": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$propertyId",
			"count":        bson.M{"$sum": 1},
			"lastActivity": bson.M{"$max": "$timestamp"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         properties,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "property",
		}}},
		{{Key: "$unwind", Value: "$property"}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"propertyId":   "$_id",
			"title":        "$property.title",
			"city":         "$property.city",
			"price":        "$property.price",
			"bhk":          "$property.bhk",
			"image":        bson.M{"$arrayElemAt": bson.A{"$property.images.url", 0}},
			"count":        1,
			"lastActivity": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "propertyId", Value: 1}}}},
	}
}

func TopLocationsPipeline(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: nonEmptyCity}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$city",
			"views":  bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$eventType", models.EventView}}, 1, 0}}},
			"clicks": bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$eventType", models.EventClick}}, 1, 0}}},
			"total":  bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{"_id": 0, "city": "$_id", "views": 1, "clicks": 1, "total": 1}}},
	}
}

func BHKDistributionPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"bhk":       bson.M{"$ne": nil},
			"eventType": bson.M{"$in": bson.A{models.EventView, models.EventClick}},
		}}},
		{{Key: "$group", Value: bson.M{"_id": "$bhk", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "bhk": "$_id", "count": 1}}},
	}
}

// DailyCountsPipeline groups events since the given instant by UTC calendar
// day and event type.
func DailyCountsPipeline(since time.Time, types []string) mongo.Pipeline {
	match := bson.M{"timestamp": bson.M{"$gte": since}}
	if len(types) > 0 {
		match["eventType"] = bson.M{"$in": types}
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"day":       bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$timestamp", "timezone": "UTC"}},
				"eventType": "$eventType",
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.day", Value: 1}, {Key: "_id.eventType", Value: 1}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "day": "$_id.day", "eventType": "$_id.eventType", "count": 1}}},
	}
}

func TopCityPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: nonEmptyCity}},
		{{Key: "$group", Value: bson.M{"_id": "$city", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$project", Value: bson.M{"_id": 0, "city": "$_id", "count": 1}}},
	}
}
