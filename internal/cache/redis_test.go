package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/salesdash/internal/config"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisStore(NewRedisClient(config.RedisConfig{Addr: mr.Addr()}), "salesdash:")
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestRedisStore_SetGet(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestRedis(t)

	require.NoError(t, store.Ping(ctx))
	assert.Equal(t, "redis", store.Name())

	var got payload
	found, err := store.Get(ctx, "dashboard:summary", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "dashboard:summary", payload{Total: 3, Label: "a"}, 30*time.Second))
	assert.True(t, mr.Exists("salesdash:dashboard:summary"))
	assert.Equal(t, 30*time.Second, mr.TTL("salesdash:dashboard:summary"))

	found, err = store.Get(ctx, "dashboard:summary", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, payload{Total: 3, Label: "a"}, got)

	stats := store.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(0), stats.Errors)
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestRedis(t)

	require.NoError(t, store.Set(ctx, "dashboard:summary", payload{Total: 1}, time.Second))
	mr.FastForward(2 * time.Second)

	var got payload
	found, err := store.Get(ctx, "dashboard:summary", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestRedis(t)

	require.NoError(t, store.Set(ctx, "dashboard:summary", payload{}, time.Minute))
	require.NoError(t, store.Set(ctx, "dashboard:by-day", payload{}, time.Minute))
	require.NoError(t, store.Set(ctx, "other:key", payload{}, time.Minute))
	require.NoError(t, mr.Set("foreign:dashboard:x", "1"))

	require.NoError(t, store.DeletePrefix(ctx, "dashboard:"))

	assert.False(t, mr.Exists("salesdash:dashboard:summary"))
	assert.False(t, mr.Exists("salesdash:dashboard:by-day"))
	assert.True(t, mr.Exists("salesdash:other:key"))
	assert.True(t, mr.Exists("foreign:dashboard:x"))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestRedis(t)

	require.NoError(t, mr.Set("salesdash:dashboard:summary", "{not json"))

	var got payload
	found, err := store.Get(ctx, "dashboard:summary", &got)
	assert.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, uint64(1), store.Stats().Errors)
}

func TestRedisStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestRedis(t)
	mr.Close()

	assert.Error(t, store.Ping(ctx))

	var got payload
	_, err := store.Get(ctx, "dashboard:summary", &got)
	assert.Error(t, err)
}
