package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "ratelimit:contact:"), mr
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, ok, err := store.Get(context.Background(), "nobody")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_SetGet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	reset := time.Now().Add(time.Minute).UnixMilli()

	require.NoError(t, store.Set(ctx, "1.2.3.4", Entry{Count: 3, ResetTime: reset}))

	got, ok, err := store.Get(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Entry{Count: 3, ResetTime: reset}, got)

	assert.True(t, mr.Exists("ratelimit:contact:1.2.3.4"))
	assert.Greater(t, mr.TTL("ratelimit:contact:1.2.3.4"), time.Duration(0))
}

func TestRedisStore_WithLimiter(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	start := time.Now()
	mr.SetTime(start)
	clock := &fakeClock{now: start}
	l := New(Config{Window: time.Minute, MaxRequests: 2}, store, WithClock(clock.Now))

	for i := 0; i < 2; i++ {
		res, err := l.Check(ctx, "c")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := l.Check(ctx, "c")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	// Redis drops the key when the window ends.
	mr.FastForward(time.Minute)
	clock.Advance(time.Minute)

	res, err = l.Check(ctx, "c")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}
