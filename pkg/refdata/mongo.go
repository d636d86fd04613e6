package refdata

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// DocumentFinder is the slice of the document store the resolver needs.
// *mongodb.Adapter satisfies it.
type DocumentFinder interface {
	FindAll(ctx context.Context, collection string, filter interface{}, results interface{}) error
}

// MongoResolver resolves reference ids against Mongo reference collections
// (one per Kind, documents shaped {_id, name}).
type MongoResolver struct {
	finder DocumentFinder
}

// NewMongoResolver creates a resolver backed by the given document store.
func NewMongoResolver(finder DocumentFinder) (*MongoResolver, error) {
	if finder == nil {
		return nil, fmt.Errorf("document finder is required")
	}
	return &MongoResolver{finder: finder}, nil
}

type referenceDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

// ResolveNames looks up ids in the kind's collection and returns the
// id→name mapping for those that exist.
func (r *MongoResolver) ResolveNames(ctx context.Context, kind Kind, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	collection, ok := collections[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}

	var docs []referenceDoc
	filter := bson.M{"_id": bson.M{"$in": ids}}
	if err := r.finder.FindAll(ctx, collection, filter, &docs); err != nil {
		return nil, fmt.Errorf("failed to resolve %s names: %w", kind, err)
	}

	resolved := make(map[string]string, len(docs))
	for _, doc := range docs {
		resolved[doc.ID] = doc.Name
	}
	return resolved, nil
}
