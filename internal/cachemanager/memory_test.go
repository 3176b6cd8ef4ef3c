package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type decoded struct {
	Rules int
	Name  string
}

func TestMemory_SetAndGet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory[decoded]("validators", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(ctx, "missing")
	require.False(t, ok)
	require.Zero(t, got)

	cache.Set(ctx, "v1", decoded{Rules: 2, Name: "digits"}, DefaultExpiration)
	got, ok = cache.Get(ctx, "v1")
	require.True(t, ok)
	require.Equal(t, decoded{Rules: 2, Name: "digits"}, got)

	require.Equal(t, Stats{Hits: 1, Misses: 1, Items: 1}, cache.Stats())
}

func TestMemory_WrongTypeIsAMiss(t *testing.T) {
	cache := NewMemory[string]("names", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("name", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "name")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestMemory_GetWithRefresh(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory[string]("names", DefaultExpiration, DefaultCleanupInterval)

	_, ok := cache.GetWithRefresh(ctx, "name", time.Hour)
	require.False(t, ok)

	cache.Set(ctx, "name", "alice", time.Millisecond)
	got, ok := cache.GetWithRefresh(ctx, "name", time.Hour)
	require.True(t, ok)
	require.Equal(t, "alice", got)

	_, expiresAt, found := cache.cache.GetWithExpiration("name")
	require.True(t, found)
	require.True(t, time.Until(expiresAt) > time.Minute)
}

func TestMemory_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory[string]("names", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)
	cache.Set(ctx, "c", "3", DefaultExpiration)

	cache.Delete(ctx)
	require.Equal(t, 3, cache.Stats().Items)

	cache.Delete(ctx, "a", "b")
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
	require.Equal(t, 1, cache.Stats().Items)

	cache.Flush(ctx)
	_, ok = cache.Get(ctx, "c")
	require.False(t, ok)
	require.Zero(t, cache.Stats().Items)
}
