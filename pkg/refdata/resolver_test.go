package refdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cosmetia/cosmetia/pkg/observability/logger"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...any)                      {}
func (noopLogger) Info(string, ...any)                       {}
func (noopLogger) Warn(string, ...any)                       {}
func (noopLogger) Error(string, ...any)                      {}
func (n noopLogger) With(...any) logger.Logger               { return n }
func (n noopLogger) WithContext(context.Context) logger.Logger { return n }

type fakeFinder struct {
	docs    map[string]map[string]string // collection -> id -> name
	lastIDs []string
	err     error
}

func (f *fakeFinder) FindAll(_ context.Context, collection string, filter interface{}, results interface{}) error {
	if f.err != nil {
		return f.err
	}
	ids := filter.(bson.M)["_id"].(bson.M)["$in"].([]string)
	f.lastIDs = ids

	out := results.(*[]referenceDoc)
	for _, id := range ids {
		if name, ok := f.docs[collection][id]; ok {
			*out = append(*out, referenceDoc{ID: id, Name: name})
		}
	}
	return nil
}

func TestMongoResolver_ResolveNames(t *testing.T) {
	finder := &fakeFinder{docs: map[string]map[string]string{
		"ingredients": {"i1": "Aloe", "i2": "Glycerin"},
	}}
	r, err := NewMongoResolver(finder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved, err := r.ResolveNames(context.Background(), KindIngredient, []string{"i1", "i2", "i3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("resolved %d names, want 2", len(resolved))
	}
	if resolved["i1"] != "Aloe" || resolved["i2"] != "Glycerin" {
		t.Errorf("unexpected mapping: %v", resolved)
	}
	// Unmatched id is absent, not an error.
	if _, ok := resolved["i3"]; ok {
		t.Error("expected i3 to be absent")
	}
}

func TestMongoResolver_EmptyInput(t *testing.T) {
	r, _ := NewMongoResolver(&fakeFinder{})
	resolved, err := r.ResolveNames(context.Background(), KindBrand, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != nil {
		t.Fatalf("expected nil result, got %v", resolved)
	}
}

func TestMongoResolver_UnknownKind(t *testing.T) {
	r, _ := NewMongoResolver(&fakeFinder{})
	if _, err := r.ResolveNames(context.Background(), Kind("color"), []string{"x"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestMongoResolver_RequiresFinder(t *testing.T) {
	if _, err := NewMongoResolver(nil); err == nil {
		t.Fatal("expected error for nil finder")
	}
}

type fakeCache struct {
	entries map[string]string
	mgetErr error
	sets    int
	gets    int
}

func (c *fakeCache) MGet(_ context.Context, keys ...string) ([]interface{}, error) {
	c.gets++
	if c.mgetErr != nil {
		return nil, c.mgetErr
	}
	values := make([]interface{}, len(keys))
	for i, key := range keys {
		if v, ok := c.entries[key]; ok {
			values[i] = v
		}
	}
	return values, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.sets++
	c.entries[key] = value
	return nil
}

type countingResolver struct {
	inner Resolver
	calls int
	asked [][]string
}

func (r *countingResolver) ResolveNames(ctx context.Context, kind Kind, ids []string) (map[string]string, error) {
	r.calls++
	r.asked = append(r.asked, ids)
	return r.inner.ResolveNames(ctx, kind, ids)
}

func TestCachedResolver_ReadThrough(t *testing.T) {
	finder := &fakeFinder{docs: map[string]map[string]string{
		"brands": {"b1": "Lumene", "b2": "Ziaja"},
	}}
	mongo, _ := NewMongoResolver(finder)
	counting := &countingResolver{inner: mongo}
	cache := &fakeCache{entries: map[string]string{}}

	r, err := NewCachedResolver(counting, cache, time.Minute, noopLogger{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	first, err := r.ResolveNames(ctx, KindBrand, []string{"b1", "b2", "b3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("resolved %d names, want 2", len(first))
	}
	if counting.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", counting.calls)
	}

	// Second lookup is fully served from cache, missing id included.
	second, err := r.ResolveNames(ctx, KindBrand, []string{"b1", "b2", "b3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counting.calls != 1 {
		t.Fatalf("inner calls after cached lookup = %d, want 1", counting.calls)
	}
	if fmt.Sprint(sortedValues(second)) != fmt.Sprint(sortedValues(first)) {
		t.Errorf("cached result %v differs from fresh result %v", second, first)
	}
}

func TestCachedResolver_PartialHitResolvesOnlyMisses(t *testing.T) {
	finder := &fakeFinder{docs: map[string]map[string]string{
		"providers": {"p1": "Douglas", "p2": "Notino"},
	}}
	mongo, _ := NewMongoResolver(finder)
	counting := &countingResolver{inner: mongo}
	cache := &fakeCache{entries: map[string]string{
		cacheKey(KindProvider, "p1"): "Douglas",
	}}

	r, _ := NewCachedResolver(counting, cache, time.Minute, noopLogger{})
	resolved, err := r.ResolveNames(context.Background(), KindProvider, []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("resolved %d names, want 2", len(resolved))
	}
	if len(counting.asked) != 1 || len(counting.asked[0]) != 1 || counting.asked[0][0] != "p2" {
		t.Errorf("inner resolver asked %v, want just p2", counting.asked)
	}
}

func TestCachedResolver_CacheFailureFallsThrough(t *testing.T) {
	finder := &fakeFinder{docs: map[string]map[string]string{
		"categories": {"c1": "Serums"},
	}}
	mongo, _ := NewMongoResolver(finder)
	cache := &fakeCache{entries: map[string]string{}, mgetErr: errors.New("redis down")}

	r, _ := NewCachedResolver(mongo, cache, time.Minute, noopLogger{})
	resolved, err := r.ResolveNames(context.Background(), KindCategory, []string{"c1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved["c1"] != "Serums" {
		t.Errorf("resolved = %v, want c1 -> Serums", resolved)
	}
}

func sortedValues(m map[string]string) []string {
	values := Names(m)
	sort.Strings(values)
	return values
}
