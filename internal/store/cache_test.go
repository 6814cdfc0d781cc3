package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, ttl), mr
}

func TestCacheProfileRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	doc := map[string]interface{}{
		"startup": map[string]interface{}{"stage_normalized": "seed"},
	}
	require.NoError(t, cache.SetProfile(ctx, "startup", "s-1", doc))

	got, err := cache.GetProfile(ctx, "startup", "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "seed", got["startup"].(map[string]interface{})["stage_normalized"])
}

func TestCacheProfileMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	got, err := cache.GetProfile(context.Background(), "startup", "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheProfileExpires(t *testing.T) {
	cache, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, cache.SetProfile(ctx, "investor", "i-1", map[string]interface{}{"name": "Acme"}))
	mr.FastForward(2 * time.Second)

	got, err := cache.GetProfile(ctx, "investor", "i-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheBatchProgress(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	best := []map[string]interface{}{
		{"investor_id": "inv-1", "fit_score": 91.2},
		{"investor_id": "inv-2", "fit_score": 74.0},
	}
	require.NoError(t, cache.SetBatchProgress(ctx, "batch-1", best))

	got, err := cache.GetBatchProgress(ctx, "batch-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "inv-1", got[0]["investor_id"])

	missing, err := cache.GetBatchProgress(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
