package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkCacheRoundTrip(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	c := NewLinkCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "https://news.google.com/rss/articles/CBMiAAA")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "https://news.google.com/rss/articles/CBMiAAA", "https://example.com/a"))

	got, ok, err := c.Get(ctx, "https://news.google.com/rss/articles/CBMiAAA")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/a", got)

	assert.Equal(t, time.Hour, mr.TTL(key("https://news.google.com/rss/articles/CBMiAAA")))
}

func TestLinkCacheExpiry(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	c := NewLinkCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "link", "https://example.com/a"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "link")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDial(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	c, err := Dial(context.Background(), addr, 0)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, defaultTTL, c.ttl)

	mr.Close()
	_, err = Dial(context.Background(), addr, 0)
	assert.Error(t, err)
}
