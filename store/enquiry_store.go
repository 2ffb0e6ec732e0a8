package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
)

type EnquiryStore struct {
	collection *mongo.Collection
}

func NewEnquiryStore(collection *mongo.Collection) *EnquiryStore {
	return &EnquiryStore{collection: collection}
}

func (s *EnquiryStore) Insert(ctx context.Context, e *models.Enquiry) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, e); err != nil {
		return apperr.Store("failed to create enquiry", err)
	}
	return nil
}

func (s *EnquiryStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Enquiry, error) {
	var e models.Enquiry
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Enquiry")
		}
		return nil, apperr.Store("failed to fetch enquiry", err)
	}
	return &e, nil
}

// List returns enquiries newest first, optionally filtered by status. A
// non-positive limit returns everything.
func (s *EnquiryStore) List(ctx context.Context, status string, limit int64) ([]models.Enquiry, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Store("failed to fetch enquiries", err)
	}
	enquiries := []models.Enquiry{}
	if err := cursor.All(ctx, &enquiries); err != nil {
		return nil, apperr.Store("failed to decode enquiries", err)
	}
	return enquiries, nil
}

func (s *EnquiryStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	n, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, apperr.Store("failed to count enquiries", err)
	}
	return n, nil
}

func (s *EnquiryStore) CountCreated(ctx context.Context, from, to *time.Time) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, createdFilter(from, to))
	if err != nil {
		return 0, apperr.Store("failed to count enquiries", err)
	}
	return n, nil
}

func (s *EnquiryStore) update(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Enquiry, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e models.Enquiry
	if err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Enquiry")
		}
		return nil, apperr.Store("failed to update enquiry", err)
	}
	return &e, nil
}

func (s *EnquiryStore) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Enquiry, error) {
	return s.update(ctx, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
}

func (s *EnquiryStore) PushNote(ctx context.Context, id primitive.ObjectID, note models.AdminNote) (*models.Enquiry, error) {
	return s.update(ctx, id, bson.M{
		"$push": bson.M{"adminNotes": note},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (s *EnquiryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Store("failed to delete enquiry", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Enquiry")
	}
	return nil
}
