package access_test

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/token/access"
	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced clock safe for concurrent reads.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemoryCache_ExpiryIsThreeQuartersOfLifetime(t *testing.T) {
	clock := newTestClock()
	cache := access.NewInMemoryCache(access.WithNowFunc(clock.Now))

	require.NoError(t, cache.Put("session-1", "AT1", 1800))

	at, err := cache.Get("session-1")
	require.NoError(t, err)
	require.Equal(t, "AT1", at.Token)
	require.Equal(t, clock.Now().Add(1350*time.Second), at.ExpiresAt)

	clock.Advance(1349 * time.Second)
	_, err = cache.Get("session-1")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = cache.Get("session-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound, "expired entries are treated as absent")
}

func TestInMemoryCache_CustomFraction(t *testing.T) {
	clock := newTestClock()
	cache := access.NewInMemoryCache(access.WithNowFunc(clock.Now), access.WithLifetimeFraction(0.5))

	require.NoError(t, cache.Put("session-1", "AT1", 100))
	at, err := cache.Get("session-1")
	require.NoError(t, err)
	require.Equal(t, clock.Now().Add(50*time.Second), at.ExpiresAt)

	t.Run("invalid fraction ignored", func(t *testing.T) {
		c := access.NewInMemoryCache(access.WithNowFunc(clock.Now), access.WithLifetimeFraction(2))
		require.NoError(t, c.Put("s", "AT", 100))
		at, err := c.Get("s")
		require.NoError(t, err)
		require.Equal(t, clock.Now().Add(75*time.Second), at.ExpiresAt)
	})
}

func TestInMemoryCache_PutValidation(t *testing.T) {
	cache := access.NewInMemoryCache()
	require.Error(t, cache.Put("", "AT1", 1800))
	require.Error(t, cache.Put("session-1", "", 1800))
	require.Error(t, cache.Put("session-1", "AT1", 0))
	require.Equal(t, 0, cache.Count())
}

func TestInMemoryCache_Overwrite(t *testing.T) {
	cache := access.NewInMemoryCache()
	require.NoError(t, cache.Put("session-1", "AT1", 1800))
	require.NoError(t, cache.Put("session-1", "AT2", 1800))

	at, err := cache.Get("session-1")
	require.NoError(t, err)
	require.Equal(t, "AT2", at.Token)

	cache.Delete("session-1")
	_, err = cache.Get("session-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInMemoryCache_Cleanup(t *testing.T) {
	clock := newTestClock()
	cache := access.NewInMemoryCache(access.WithNowFunc(clock.Now))

	require.NoError(t, cache.Put("short", "AT1", 60))
	require.NoError(t, cache.Put("long", "AT2", 3600))

	clock.Advance(time.Minute)
	require.Equal(t, 1, cache.Cleanup())
	require.Equal(t, 1, cache.Count())

	_, err := cache.Get("long")
	require.NoError(t, err)
}

func TestInMemoryCache_Janitor(t *testing.T) {
	clock := newTestClock()
	cache := access.NewInMemoryCache(access.WithNowFunc(clock.Now))
	require.NoError(t, cache.Put("session-1", "AT1", 1))
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache.StartJanitor(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool { return cache.Count() == 0 }, time.Second, 5*time.Millisecond)
}
