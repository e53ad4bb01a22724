package access

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
)

var _ Cache = (*InMemoryCache)(nil)

// InMemoryCache is a thread-safe in-memory access token cache
type InMemoryCache struct {
	mu               sync.RWMutex
	tokens           map[string]AccessToken
	lifetimeFraction float64
	nowFunc          func() time.Time
}

type CacheOption func(*InMemoryCache)

// WithLifetimeFraction sets the share of the declared lifetime to cache for.
// Values outside (0, 1] are ignored.
func WithLifetimeFraction(fraction float64) CacheOption {
	return func(c *InMemoryCache) {
		if fraction > 0 && fraction <= 1 {
			c.lifetimeFraction = fraction
		}
	}
}

func WithNowFunc(now func() time.Time) CacheOption {
	return func(c *InMemoryCache) {
		c.nowFunc = now
	}
}

func NewInMemoryCache(options ...CacheOption) *InMemoryCache {
	c := &InMemoryCache{
		tokens:           make(map[string]AccessToken),
		lifetimeFraction: DefaultLifetimeFraction,
		nowFunc:          time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *InMemoryCache) Put(sessionID, token string, lifetimeSeconds int64) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}
	if token == "" {
		return errors.New("token is required")
	}
	if lifetimeSeconds <= 0 {
		return errors.New("lifetime must be positive")
	}

	ttl := time.Duration(float64(lifetimeSeconds) * c.lifetimeFraction * float64(time.Second))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[sessionID] = AccessToken{
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: c.nowFunc().Add(ttl),
	}
	return nil
}

// Get never returns an expired entry.
func (c *InMemoryCache) Get(sessionID string) (*AccessToken, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	at, ok := c.tokens[sessionID]
	if !ok || !c.nowFunc().Before(at.ExpiresAt) {
		return nil, apperrors.ErrNotFound
	}
	return &at, nil
}

func (c *InMemoryCache) Delete(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, sessionID)
}

func (c *InMemoryCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tokens)
}

// Cleanup removes expired entries and returns how many were dropped.
func (c *InMemoryCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	count := 0
	for sessionID, at := range c.tokens {
		if !now.Before(at.ExpiresAt) {
			delete(c.tokens, sessionID)
			count++
		}
	}
	return count
}

// StartJanitor runs Cleanup every interval until ctx is cancelled.
func (c *InMemoryCache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := c.Cleanup(); n > 0 {
					log.Debug().Int("removed", n).Msg("Expired access tokens cleaned up")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
