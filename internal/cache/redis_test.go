package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(Config{Host: mr.Host(), Port: mr.Port()})
	require.NoError(t, err, "Should connect to miniredis")
	t.Cleanup(func() { c.Close() })

	return c, mr
}

type doc struct {
	Season int      `json:"season"`
	Names  []string `json:"names"`
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err := NewRedisCache(Config{Host: host, Port: port})
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got doc
	ok, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok, "Missing key is a miss")

	require.NoError(t, c.SetJSON(ctx, "k", doc{Season: 2023, Names: []string{"Todd", "Eve"}}, time.Minute))
	ok, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc{Season: 2023, Names: []string{"Todd", "Eve"}}, got)

	mr.FastForward(2 * time.Minute)
	ok, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok, "Entry should expire after its TTL")
}

func TestGetJSON_UndecodableIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var got doc
	ok, err := c.GetJSON(context.Background(), "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAcquire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.Acquire(ctx, "lease", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "First caller takes the lease")

	ok, err = c.Acquire(ctx, "lease", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "Lease is held")

	mr.FastForward(time.Hour + time.Second)
	ok, err = c.Acquire(ctx, "lease", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "Lease is free again after its TTL")
}

func TestClosedConnectionErrors(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.Acquire(context.Background(), "lease", time.Minute)
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}
