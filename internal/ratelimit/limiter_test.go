package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(cfg Config) (*Limiter, *MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	store := NewMemoryStore()
	return New(cfg, store, WithClock(clock.Now)), store, clock
}

func TestCheck_FirstRequest(t *testing.T) {
	l, _, clock := newTestLimiter(ContactForm)

	res, err := l.Check(context.Background(), "1.2.3.4")

	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 4, res.Remaining)
	assert.Equal(t, clock.Now().Add(15*time.Minute).UnixMilli(), res.ResetTime)
	assert.Zero(t, res.RetryAfter)
}

func TestCheck_ExhaustsWindow(t *testing.T) {
	l, _, clock := newTestLimiter(ContactForm)
	ctx := context.Background()

	for i := 0; i < ContactForm.MaxRequests; i++ {
		res, err := l.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, ContactForm.MaxRequests-(i+1), res.Remaining)
	}

	clock.Advance(90 * time.Second)
	res, err := l.Check(ctx, "1.2.3.4")

	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, int64(810), res.RetryAfter)
}

func TestCheck_RetryAfterRoundsUp(t *testing.T) {
	l, _, clock := newTestLimiter(Config{Window: time.Minute, MaxRequests: 1})
	ctx := context.Background()

	_, err := l.Check(ctx, "c")
	require.NoError(t, err)

	clock.Advance(59*time.Second + 500*time.Millisecond)
	res, err := l.Check(ctx, "c")

	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(1), res.RetryAfter)
}

func TestCheck_WindowResets(t *testing.T) {
	l, _, clock := newTestLimiter(ContactForm)
	ctx := context.Background()

	for i := 0; i <= ContactForm.MaxRequests; i++ {
		_, err := l.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
	}

	clock.Advance(ContactForm.Window)
	res, err := l.Check(ctx, "1.2.3.4")

	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, ContactForm.MaxRequests-1, res.Remaining)
}

func TestCheck_IdentifiersAreIndependent(t *testing.T) {
	l, _, _ := newTestLimiter(Config{Window: time.Minute, MaxRequests: 1})
	ctx := context.Background()

	a, err := l.Check(ctx, "a")
	require.NoError(t, err)
	b, err := l.Check(ctx, "b")
	require.NoError(t, err)

	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed)
}

func TestCheck_PurgesStaleEntries(t *testing.T) {
	l, store, clock := newTestLimiter(API)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := l.Check(ctx, fmt.Sprintf("client-%d", i))
		require.NoError(t, err)
	}
	require.Equal(t, 10, store.Len())

	// entries are purged once their reset time is a full window in the past
	clock.Advance(2 * API.Window)
	_, err := l.Check(ctx, "newcomer")
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
}

func TestCheck_ConcurrentUse(t *testing.T) {
	l, _, _ := newTestLimiter(Config{Window: time.Minute, MaxRequests: 1000})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Check(ctx, "shared")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

type failingStore struct{ MemoryStore }

func (*failingStore) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("boom")
}

func (*failingStore) DeleteExpired(context.Context, int64) error { return nil }

func TestCheck_StoreError(t *testing.T) {
	l := New(ContactForm, &failingStore{})

	_, err := l.Check(context.Background(), "x")

	assert.ErrorContains(t, err, "rate limit get")
}
