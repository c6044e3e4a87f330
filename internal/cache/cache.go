// Package cache provides a typed in-memory cache for repository fetches.
// Historical commit data never changes, so stat and diff results for
// concrete refs are served from here after the first fetch; worktree
// comparisons always bypass the cache.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"loupe/internal/log"
)

const (
	// DefaultExpiration keeps historical results for the lifetime of a
	// typical browsing session.
	DefaultExpiration = 30 * time.Minute
	// DefaultCleanupInterval controls how often expired entries are swept.
	DefaultCleanupInterval = 10 * time.Minute
)

// Manager is the cache access interface.
type Manager[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
	Flush(ctx context.Context)
}

// InMemory is a go-cache backed Manager.
type InMemory[V any] struct {
	useCase string
	cache   *gocache.Cache
}

// NewInMemory creates a cache; useCase labels log entries.
func NewInMemory[V any](useCase string, expiration, cleanup time.Duration) *InMemory[V] {
	return &InMemory[V]{
		useCase: useCase,
		cache:   gocache.New(expiration, cleanup),
	}
}

// Get retrieves a value by key.
func (c *InMemory[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	value, found := c.cache.Get(key)
	if !found {
		return zero, false
	}
	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong value type in cache", "use_case", c.useCase, "key", key)
		return zero, false
	}
	log.Debug(log.CatCache, "cache hit", "use_case", c.useCase, "key", key)
	return v, true
}

// Set stores a value under key with the given TTL.
func (c *InMemory[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	c.cache.Set(key, value, ttl)
}

// Flush empties the cache.
func (c *InMemory[V]) Flush(ctx context.Context) {
	c.cache.Flush()
}

// ReadThrough wraps a fetch function with a Manager. Get consults the
// cache first and stores fetched values on miss; errors are never cached.
type ReadThrough[V any, I any] struct {
	cache Manager[V]
	fetch func(ctx context.Context, input I) (V, error)
}

// NewReadThrough builds a read-through cache over fetch.
func NewReadThrough[V any, I any](cache Manager[V], fetch func(ctx context.Context, input I) (V, error)) *ReadThrough[V, I] {
	return &ReadThrough[V, I]{cache: cache, fetch: fetch}
}

// Get returns the cached value for key or fetches, caches and returns it.
// skip bypasses the cache entirely for inputs whose results are mutable.
func (r *ReadThrough[V, I]) Get(ctx context.Context, key string, input I, ttl time.Duration, skip bool) (V, error) {
	if skip {
		return r.fetch(ctx, input)
	}
	if v, ok := r.cache.Get(ctx, key); ok {
		return v, nil
	}
	v, err := r.fetch(ctx, input)
	if err != nil {
		return v, err
	}
	r.cache.Set(ctx, key, v, ttl)
	return v, nil
}
