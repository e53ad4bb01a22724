package flowrepo

import "time"

// State is the position of a session in the authorization-code handshake.
type State string

const (
	Unstarted       State = "UNSTARTED"
	AwaitingConsent State = "AWAITING_CONSENT"
	Authenticated   State = "AUTHENTICATED"
	Error           State = "ERROR"
)

func (s State) String() string {
	return string(s)
}

// FlowState records the handshake outcome for one session.
type FlowState struct {
	SessionID  string
	State      State
	Diagnostic string // provider or exchange message when State is Error
	UpdatedAt  time.Time
}

type Repo interface {
	Upsert(sessionID string, flowState *FlowState) error
	Get(sessionID string) (*FlowState, error)
	Delete(sessionID string) error
}
