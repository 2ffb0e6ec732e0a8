package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
)

type AdminStore struct {
	collection *mongo.Collection
}

func NewAdminStore(collection *mongo.Collection) *AdminStore {
	return &AdminStore{collection: collection}
}

func (s *AdminStore) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *AdminStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *AdminStore) findOne(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var admin models.Admin
	if err := s.collection.FindOne(ctx, filter).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Admin")
		}
		return nil, apperr.Store("failed to fetch admin", err)
	}
	return &admin, nil
}

func (s *AdminStore) Insert(ctx context.Context, admin *models.Admin) error {
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("Admin with this email already exists")
		}
		return apperr.Store("failed to create admin", err)
	}
	return nil
}
