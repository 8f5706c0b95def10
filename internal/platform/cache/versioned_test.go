package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value int `json:"value"`
}

func newTestCache(t *testing.T) *Versioned {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, "rates", time.Minute)
}

func TestFetchJSONCachesUntilBump(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Value: calls}, nil
	}

	key, err := c.BuildKey(ctx, "7", "schedules", "3")
	require.NoError(t, err)
	assert.Equal(t, "rates:7:schedules:3:v1", key)

	var got payload
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, got.Value)

	require.NoError(t, c.Bump(ctx, "7"))
	key, err = c.BuildKey(ctx, "7", "schedules", "3")
	require.NoError(t, err)
	assert.Equal(t, "rates:7:schedules:3:v2", key)
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, got.Value)
}

func TestBumpIsScoped(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Bump(ctx, "1"))
	v1, err := c.Version(ctx, "1")
	require.NoError(t, err)
	v2, err := c.Version(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v1)
	assert.Equal(t, int64(1), v2)
}

func TestBumpAfterVersionKeyLossMovesPastBase(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "7", "schedules", "42")
	require.NoError(t, err)
	require.NoError(t, c.client.Del(ctx, c.versionKey("7")).Err())

	require.NoError(t, c.Bump(ctx, "7"))
	after, err := c.BuildKey(ctx, "7", "schedules", "42")
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	require.NoError(t, c.Bump(ctx, "7"))
	v, err := c.Version(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestFetchJSONLoaderErrorIsNotCached(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var got payload
	err := c.FetchJSON(ctx, "k", &got, func(context.Context) (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	require.NoError(t, c.FetchJSON(ctx, "k", &got, func(context.Context) (any, error) { return payload{Value: 9}, nil }))
	assert.Equal(t, 9, got.Value)
}

func TestNilCacheCallsLoader(t *testing.T) {
	var c *Versioned
	var got payload
	require.NoError(t, c.FetchJSON(context.Background(), "k", &got, func(context.Context) (any, error) {
		return payload{Value: 4}, nil
	}))
	assert.Equal(t, 4, got.Value)
	assert.NoError(t, c.Bump(context.Background(), "1"))
}
