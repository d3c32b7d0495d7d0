package redis

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"subscription-group-bot/internal/infrastructure/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheWithClient(client, "test:"), mr
}

func TestCacheSetGetDelete(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", payload{Name: "a", N: 1}, time.Minute))
	assert.True(t, mr.Exists("test:k"))

	var got payload
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "a", N: 1}, got)

	require.NoError(t, cache.Delete(ctx, "k"))
	err := cache.Get(ctx, "k", &got)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestCacheTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", 1, time.Minute))
	mr.FastForward(2 * time.Minute)

	var n int
	assert.ErrorIs(t, cache.Get(ctx, "k", &n), ErrCacheMiss)
}

func TestCacheSetNX(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := cache.SetNX(ctx, "ref", "first", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.SetNX(ctx, "ref", "second", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisServiceLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	rs := NewRedisService(config.RedisConfig{Host: mr.Host(), Port: port, PoolSize: 2})
	assert.Nil(t, rs.GetCache())

	require.NoError(t, rs.Start(context.Background()))
	assert.Equal(t, StateRunning, rs.State())
	assert.True(t, rs.HealthCheck(context.Background()))
	require.NotNil(t, rs.GetCache())

	require.NoError(t, rs.Stop())
	assert.Equal(t, StateStopped, rs.State())
	assert.False(t, rs.HealthCheck(context.Background()))
	assert.Error(t, rs.Stop())
}

func TestRedisServiceStartFailure(t *testing.T) {
	rs := NewRedisService(config.RedisConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 100 * time.Millisecond})
	require.Error(t, rs.Start(context.Background()))
	assert.Equal(t, StateError, rs.State())
}
