package refdata

import (
	"context"
	"fmt"
	"time"

	"github.com/cosmetia/cosmetia/pkg/observability/logger"
)

// missingMarker is cached for ids with no match so repeated lookups of a
// nonexistent id do not hit the inner resolver every time.
const missingMarker = "\x00missing"

// Cache is the slice of the cache store the decorator needs.
// *redis.Adapter satisfies it.
type Cache interface {
	MGet(ctx context.Context, keys ...string) ([]interface{}, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedResolver is a read-through cache in front of another Resolver.
// Cache failures degrade to the inner resolver, never to request failure.
type CachedResolver struct {
	inner  Resolver
	cache  Cache
	ttl    time.Duration
	logger logger.Logger
}

// NewCachedResolver decorates inner with a per-id name cache.
func NewCachedResolver(inner Resolver, cache Cache, ttl time.Duration, log logger.Logger) (*CachedResolver, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner resolver is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedResolver{inner: inner, cache: cache, ttl: ttl, logger: log}, nil
}

// ResolveNames serves ids from cache where possible and resolves the rest
// through the inner resolver, caching hits and misses alike.
func (r *CachedResolver) ResolveNames(ctx context.Context, kind Kind, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(kind, id)
	}

	resolved := make(map[string]string, len(ids))
	var uncached []string

	values, err := r.cache.MGet(ctx, keys...)
	if err != nil || len(values) != len(ids) {
		if err != nil {
			r.logger.Warn("reference cache read failed, falling through", "kind", kind, "error", err)
		}
		uncached = ids
	} else {
		for i, raw := range values {
			name, ok := raw.(string)
			if !ok {
				uncached = append(uncached, ids[i])
				continue
			}
			if name != missingMarker {
				resolved[ids[i]] = name
			}
		}
	}

	if len(uncached) == 0 {
		return resolved, nil
	}

	fresh, err := r.inner.ResolveNames(ctx, kind, uncached)
	if err != nil {
		return nil, err
	}

	for _, id := range uncached {
		name, ok := fresh[id]
		if ok {
			resolved[id] = name
		} else {
			name = missingMarker
		}
		if setErr := r.cache.Set(ctx, cacheKey(kind, id), name, r.ttl); setErr != nil {
			r.logger.Warn("reference cache write failed", "kind", kind, "id", id, "error", setErr)
		}
	}
	return resolved, nil
}

func cacheKey(kind Kind, id string) string {
	return fmt.Sprintf("refdata:%s:%s", kind, id)
}
