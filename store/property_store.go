package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
)

// Tag fields on a property that carry a title and image.
const (
	TagFeaturedLocation = "featuredLocation"
	TagCuratedProperty  = "curatedProperty"
)

type PropertyStore struct {
	collection *mongo.Collection
}

func NewPropertyStore(collection *mongo.Collection) *PropertyStore {
	return &PropertyStore{collection: collection}
}

func (s *PropertyStore) Find(ctx context.Context, q PropertyQuery) ([]models.Property, error) {
	cursor, err := s.collection.Find(ctx, q.Filter(), q.findOptions())
	if err != nil {
		return nil, apperr.Store("failed to fetch properties", err)
	}
	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, apperr.Store("failed to decode properties", err)
	}
	return properties, nil
}

func (s *PropertyStore) Count(ctx context.Context, q PropertyQuery) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, q.Filter())
	if err != nil {
		return 0, apperr.Store("failed to count properties", err)
	}
	return n, nil
}

func (s *PropertyStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Property")
		}
		return nil, apperr.Store("failed to fetch property", err)
	}
	return &property, nil
}

func (s *PropertyStore) Insert(ctx context.Context, p *models.Property) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, p); err != nil {
		return apperr.Store("failed to create property", err)
	}
	return nil
}

func (s *PropertyStore) Replace(ctx context.Context, p *models.Property) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return apperr.Store("failed to update property", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Property")
	}
	return nil
}

func (s *PropertyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Store("failed to delete property", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Property")
	}
	return nil
}

func (s *PropertyStore) ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"featured": !p.Featured, "updatedAt": time.Now()}}
	var updated models.Property
	if err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Property")
		}
		return nil, apperr.Store("failed to toggle featured status", err)
	}
	return &updated, nil
}

func (s *PropertyStore) Cities(ctx context.Context) ([]string, error) {
	values, err := s.collection.Distinct(ctx, "city", bson.M{})
	if err != nil {
		return nil, apperr.Store("failed to fetch cities", err)
	}
	cities := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok && c != "" {
			cities = append(cities, c)
		}
	}
	sort.Strings(cities)
	return cities, nil
}

// CollectionSampleImage returns the first image URL of any active property in
// the collection, or "" when none has an image.
func (s *PropertyStore) CollectionSampleImage(ctx context.Context, key string) (string, error) {
	filter := bson.M{"collections": key, "status": models.StatusActive, "images.0": bson.M{"$exists": true}}
	opts := options.FindOne().SetProjection(bson.M{"images": 1})
	var p models.Property
	err := s.collection.FindOne(ctx, filter, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Store("failed to fetch collection sample", err)
	}
	return p.FirstImageURL(), nil
}

func TagSummaryPipeline(field string) mongo.Pipeline {
	title := field + ".title"
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusActive, title: bson.M{"$exists": true, "$ne": ""}}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$" + title,
			"count":       bson.M{"$sum": 1},
			"sampleImage": bson.M{"$first": "$" + field + ".image.url"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "title": "$_id", "count": 1, "image": "$sampleImage"}}},
	}
}

// TagSummaries groups active properties by the title of a manual tag field.
func (s *PropertyStore) TagSummaries(ctx context.Context, field string) ([]models.TagSummary, error) {
	cursor, err := s.collection.Aggregate(ctx, TagSummaryPipeline(field))
	if err != nil {
		return nil, apperr.Store("failed to aggregate "+field, err)
	}
	out := []models.TagSummary{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Store("failed to decode "+field, err)
	}
	return out, nil
}

// FindTagImage returns the image already attached to another property under
// the same tag title, or nil.
func (s *PropertyStore) FindTagImage(ctx context.Context, field, title string) (*models.MediaRef, error) {
	filter := bson.M{field + ".title": title, field + ".image.url": bson.M{"$exists": true, "$ne": ""}}
	var p models.Property
	err := s.collection.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Store("failed to look up tag image", err)
	}
	tag := p.FeaturedLocation
	if field == TagCuratedProperty {
		tag = p.CuratedProperty
	}
	if tag == nil {
		return nil, nil
	}
	img := tag.Image
	return &img, nil
}

// CountCreated counts properties created in [from, to). Nil bounds are open.
func (s *PropertyStore) CountCreated(ctx context.Context, from, to *time.Time, status string) (int64, error) {
	filter := createdFilter(from, to)
	if status != "" {
		filter["status"] = status
	}
	n, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, apperr.Store("failed to count properties", err)
	}
	return n, nil
}

// MostCommonCity returns the most frequent city, or "" for an empty catalog.
func (s *PropertyStore) MostCommonCity(ctx context.Context) (string, error) {
	city, _, err := mostCommon[string](ctx, s.collection, "city")
	return city, err
}

// MostCommonBHK returns the most frequent bhk, or nil for an empty catalog.
func (s *PropertyStore) MostCommonBHK(ctx context.Context) (*int, error) {
	bhk, ok, err := mostCommon[int](ctx, s.collection, "bhk")
	if err != nil || !ok {
		return nil, err
	}
	return &bhk, nil
}

func mostCommon[T any](ctx context.Context, coll *mongo.Collection, field string) (T, bool, error) {
	var zero T
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: 1}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return zero, false, apperr.Store("failed to aggregate "+field, err)
	}
	var rows []struct {
		ID T `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return zero, false, apperr.Store("failed to decode "+field, err)
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	return rows[0].ID, true, nil
}

func (s *PropertyStore) AveragePrice(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "avgPrice": bson.M{"$avg": "$price"}}}},
	}
	var rows []struct {
		AvgPrice float64 `bson:"avgPrice"`
	}
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, apperr.Store("failed to aggregate price", err)
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, apperr.Store("failed to decode price", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].AvgPrice, nil
}

func createdFilter(from, to *time.Time) bson.M {
	filter := bson.M{}
	if from == nil && to == nil {
		return filter
	}
	created := bson.M{}
	if from != nil {
		created["$gte"] = *from
	}
	if to != nil {
		created["$lt"] = *to
	}
	filter["createdAt"] = created
	return filter
}
