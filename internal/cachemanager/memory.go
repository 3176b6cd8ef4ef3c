package cachemanager

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/richinput/internal/log"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Stats counts lookups against a Memory cache.
type Stats struct {
	Hits   int64
	Misses int64
	Items  int
}

// Memory is a Cache backed by go-cache. The name labels its log lines.
type Memory[V any] struct {
	name   string
	cache  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemory creates an in-memory cache.
func NewMemory[V any](name string, defaultExpiration, cleanupInterval time.Duration) *Memory[V] {
	return &Memory[V]{
		name:  name,
		cache: gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Get returns the value stored under key.
func (c *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	value, found := c.cache.Get(key)
	if !found {
		c.misses.Add(1)
		return zero, false
	}
	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "Cached value has the wrong type", "cache", c.name, "key", key)
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	log.Debug(log.CatCache, "Cache hit", "cache", c.name)
	return v, true
}

// GetWithRefresh returns the value stored under key and restarts its ttl.
func (c *Memory[V]) GetWithRefresh(ctx context.Context, key string, ttl time.Duration) (V, bool) {
	value, found := c.Get(ctx, key)
	if found {
		c.Set(ctx, key, value, ttl)
	}
	return value, found
}

// Set stores value under key for ttl.
func (c *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) {
	c.cache.Set(key, value, ttl)
}

// Delete removes keys.
func (c *Memory[V]) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.cache.Delete(key)
	}
}

// Flush removes every item.
func (c *Memory[V]) Flush(context.Context) {
	c.cache.Flush()
	log.Debug(log.CatCache, "Cache flushed", "cache", c.name)
}

// Stats returns the lookup counters and the current item count.
func (c *Memory[V]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Items: c.cache.ItemCount()}
}
