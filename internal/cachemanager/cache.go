// Package cachemanager caches values derived from configuration strings,
// such as decoded character validators, in a process-local go-cache.
package cachemanager

import (
	"context"
	"time"
)

// Cache is the store a ReadThroughCache reads from and fills.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
}
