package flowrepo

import (
	"errors"
	"sync"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu     sync.RWMutex
	states map[string]FlowState
}

// NewInMemoryRepo creates a new in-memory handshake state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]FlowState),
	}
}

// Upsert stores or replaces the session's flow state
func (r *InMemoryRepo) Upsert(sessionID string, flowState *FlowState) error {
	if sessionID == "" {
		return errors.New("sessionID cannot be empty")
	}
	if flowState == nil {
		return errors.New("flowState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *flowState
	stored.SessionID = sessionID
	r.states[sessionID] = stored
	return nil
}

// Get returns a copy of the session's flow state
func (r *InMemoryRepo) Get(sessionID string) (*FlowState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flowState, ok := r.states[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &flowState, nil
}

// Delete removes the session's flow state
func (r *InMemoryRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, sessionID)
	return nil
}
