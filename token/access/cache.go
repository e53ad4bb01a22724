package access

import "time"

// DefaultLifetimeFraction is the share of the provider-declared lifetime an
// access token stays cached. The cache entry always expires before the
// token does.
const DefaultLifetimeFraction = 0.75

// AccessToken is a cached access credential.
type AccessToken struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// Cache holds short-lived access credentials keyed by session ID.
type Cache interface {
	// Put stores the token with an expiry derived from lifetimeSeconds.
	Put(sessionID, token string, lifetimeSeconds int64) error
	// Get returns errors.ErrNotFound when the entry is absent or expired.
	Get(sessionID string) (*AccessToken, error)
	Delete(sessionID string)
}
