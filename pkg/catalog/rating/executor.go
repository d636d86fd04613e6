package rating

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	mongostore "github.com/cosmetia/cosmetia/pkg/store/mongodb"
)

// MongoExecutor adapts the MongoDB store adapter to the maintainer's
// executor contract.
type MongoExecutor struct {
	adapter *mongostore.Adapter
}

// NewMongoExecutor creates a MongoExecutor.
func NewMongoExecutor(adapter *mongostore.Adapter) (*MongoExecutor, error) {
	if adapter == nil {
		return nil, fmt.Errorf("mongodb adapter is required")
	}
	return &MongoExecutor{adapter: adapter}, nil
}

// UpdateOne applies update to one matching document.
func (e *MongoExecutor) UpdateOne(ctx context.Context, collection string, filter, update interface{}) (int64, error) {
	result, err := e.adapter.UpdateOne(ctx, collection, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

// Exists reports whether any document matches filter.
func (e *MongoExecutor) Exists(ctx context.Context, collection string, filter interface{}) (bool, error) {
	var doc bson.M
	err := e.adapter.FindOne(ctx, collection, filter, &doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
