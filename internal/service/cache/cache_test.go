package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldProjector/pkg/config"
)

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("x"), 0))

	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)
}

func TestTTLCacheCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	v := []byte("abc")
	require.NoError(t, c.SetBytes(ctx, "k", v, time.Minute))
	v[0] = 'z'

	b, _, _ := c.GetBytes(ctx, "k")
	assert.Equal(t, "abc", string(b))
}

func TestTTLCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ := c.GetBytes(ctx, "k")
	assert.False(t, ok)
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()

	cfg.Cache.Backend = "memory"
	c, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &TTLCache{}, c)

	cfg.Cache.Backend = "none"
	c, err = New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.SetBytes(context.Background(), "k", []byte("v"), time.Minute))
	_, ok, _ := c.GetBytes(context.Background(), "k")
	assert.False(t, ok)

	cfg.Cache.Backend = "redis"
	c, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, c)
	require.NoError(t, c.(*RedisCache).Close())

	cfg.Cache.Backend = "layered"
	c, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LayeredCache{}, c)
	require.NoError(t, c.(*LayeredCache).Close())

	cfg.Cache.Backend = "memcached"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	c := NewRedisCache(RedisConfig{Addr: addr, Prefix: "yieldprojector-test"})
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

type countingCache struct {
	*TTLCache
	gets int
}

func (c *countingCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets++
	return c.TTLCache.GetBytes(ctx, key)
}

func TestLayeredCachePromotesFromL2(t *testing.T) {
	ctx := context.Background()
	l2 := &countingCache{TTLCache: NewTTLCache()}
	require.NoError(t, l2.SetBytes(ctx, "k", []byte("v"), time.Minute))

	lc := NewLayeredCache(l2, time.Minute)
	for i := 0; i < 3; i++ {
		b, ok, err := lc.GetBytes(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "v", string(b))
	}
	assert.Equal(t, 1, l2.gets)

	require.NoError(t, lc.Delete(ctx, "k"))
	_, ok, _ := lc.GetBytes(ctx, "k")
	assert.False(t, ok)
}

func TestLayeredCacheWritesThrough(t *testing.T) {
	ctx := context.Background()
	l2 := NewTTLCache()
	lc := NewLayeredCache(l2, time.Minute)

	require.NoError(t, lc.SetBytes(ctx, "k", []byte("v"), time.Second))
	b, ok, _ := l2.GetBytes(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", string(b))
	assert.NoError(t, lc.Close())
}
