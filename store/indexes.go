package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/visheshsingal/hitech/config"
)

func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		"properties": {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "city", Value: 1}, {Key: "bhk", Value: 1}, {Key: "price", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "collections", Value: 1}}},
		},
		"enquiries": {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"analytics": {
			{Keys: bson.D{{Key: "eventType", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "eventType", Value: 1}}},
			{Keys: bson.D{{Key: "city", Value: 1}, {Key: "eventType", Value: 1}}},
		},
		"admins": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
}

// EnsureIndexes creates the indexes the report and search queries rely on.
// Creating an index that already exists is a no-op in MongoDB.
func EnsureIndexes(ctx context.Context, db *mongo.Database, names config.CollectionConfig) error {
	byRole := map[string]string{
		"properties": names.Properties,
		"enquiries":  names.Enquiries,
		"analytics":  names.Analytics,
		"admins":     names.Admins,
	}
	for role, idx := range indexModels() {
		if _, err := db.Collection(byRole[role]).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", role, err)
		}
	}
	return nil
}
