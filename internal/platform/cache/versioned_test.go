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

type summary struct {
	Count int `json:"count"`
}

func newTestCache(t *testing.T) (*Versioned, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, "dashboard", time.Minute), mr
}

func TestFetchJSONUsesCachedValue(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return summary{Count: calls}, nil
	}

	key, err := c.BuildKey(ctx, "summary")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:summary:v1", key)

	var first, second summary
	require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &second, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, second.Count)
}

func TestBumpInvalidatesKeys(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "summary")
	require.NoError(t, err)
	var out summary
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) { return summary{Count: 1}, nil }))
	require.True(t, mr.Exists(key))

	require.NoError(t, c.Bump(ctx))
	bumped, err := c.BuildKey(ctx, "summary")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:summary:v2", bumped)

	require.NoError(t, c.FetchJSON(ctx, bumped, &out, func(context.Context) (any, error) { return summary{Count: 7}, nil }))
	assert.Equal(t, 7, out.Count)
}

func TestNilClientFallsThroughToLoader(t *testing.T) {
	c := NewVersioned(nil, "dashboard", time.Minute)
	ctx := context.Background()
	key, err := c.BuildKey(ctx, "summary")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:summary", key)

	var out summary
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) { return summary{Count: 3}, nil }))
	assert.Equal(t, 3, out.Count)
	require.NoError(t, c.Bump(ctx))
}
