package refresh

import (
	"errors"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of Repo.
// Contents live for the process lifetime only.
type InMemoryRepo struct {
	mu      sync.RWMutex
	tokens  map[string]StoredRefreshToken // sessionID -> refresh token
	nowFunc func() time.Time
}

// NewInMemoryRepo creates a new in-memory refresh token repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		tokens:  make(map[string]StoredRefreshToken),
		nowFunc: time.Now,
	}
}

// WithNowFunc overrides the clock used to stamp Iat.
func (r *InMemoryRepo) WithNowFunc(now func() time.Time) *InMemoryRepo {
	r.nowFunc = now
	return r
}

// Upsert stores the refresh token, replacing any previous one for the session
func (r *InMemoryRepo) Upsert(sessionID, token string) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}
	if token == "" {
		return errors.New("token is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[sessionID] = StoredRefreshToken{
		SessionID: sessionID,
		Token:     token,
		Iat:       r.nowFunc(),
	}
	return nil
}

// Get returns a copy of the session's refresh token
func (r *InMemoryRepo) Get(sessionID string) (*StoredRefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tokens[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rt, nil
}

// Delete removes the session's refresh token
func (r *InMemoryRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, sessionID)
	return nil
}

func (r *InMemoryRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
