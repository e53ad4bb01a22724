package refresh

import (
	"time"
)

// StoredRefreshToken is the refresh credential held for one browser session.
// A session has at most one; every exchange replaces it.
type StoredRefreshToken struct {
	SessionID string    // Browser session the credential belongs to
	Token     string    // The opaque refresh credential issued by the provider
	Iat       time.Time // When this credential was stored
}

// Repo manages refresh credentials keyed by session ID.
// Implementations must make each call atomic with respect to the others.
type Repo interface {
	// Upsert unconditionally replaces the session's refresh credential.
	Upsert(sessionID, token string) error
	// Get returns the session's refresh credential or errors.ErrNotFound.
	Get(sessionID string) (*StoredRefreshToken, error)
	Delete(sessionID string) error
	Count() int
}
