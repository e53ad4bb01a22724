package sessions

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
)

// IDGenerator produces new session identifiers. Identifiers must be
// unguessable and unique across the process lifetime.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// CookieOptions control the session cookie attributes.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Identifier maps browser requests to stable session IDs through a signed
// cookie, creating the session on first contact.
type Identifier struct {
	signer *Signer
	ids    IDGenerator
	cookie CookieOptions
}

type IdentifierOption func(*Identifier)

func WithIDGenerator(ids IDGenerator) IdentifierOption {
	return func(i *Identifier) {
		i.ids = ids
	}
}

func WithNowFunc(now func() time.Time) IdentifierOption {
	return func(i *Identifier) {
		i.signer.nowFunc = now
	}
}

func NewIdentifier(secret string, cookie CookieOptions, options ...IdentifierOption) (*Identifier, error) {
	signer, err := NewSigner(secret)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[sessions NewIdentifier]")
	}
	if cookie.Name == "" {
		cookie.Name = "sessionID"
	}
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 30 * 24 * time.Hour
	}
	i := &Identifier{
		signer: signer,
		ids:    UUIDGenerator{},
		cookie: cookie,
	}
	for _, opt := range options {
		opt(i)
	}
	return i, nil
}

// CookieName returns the name of the session cookie.
func (i *Identifier) CookieName() string {
	return i.cookie.Name
}

// SessionID returns the ID carried by the request's session cookie, if the
// cookie is present and valid.
func (i *Identifier) SessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(i.cookie.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, err := i.signer.Verify(c.Value)
	if err != nil {
		log.Debug().Err(err).Msg("Ignoring session cookie")
		return "", false
	}
	return id, true
}

// Identify returns the request's session ID, issuing a new session and
// cookie when the request carries none or an invalid one.
func (i *Identifier) Identify(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := i.SessionID(r); ok {
		return id, nil
	}

	id := i.ids.NewID()
	if id == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidSession, "[Identifier Identify] empty session ID generated")
	}
	if err := i.Issue(w, id); err != nil {
		return "", err
	}
	log.Debug().Str("session_id", id).Msg("New session issued")
	return id, nil
}

// Issue writes a fresh cookie for sessionID, restarting its max age.
func (i *Identifier) Issue(w http.ResponseWriter, sessionID string) error {
	value, err := i.signer.Sign(sessionID, i.cookie.MaxAge)
	if err != nil {
		return apperrors.Wrapf(err, "[Identifier Issue]")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     i.cookie.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   i.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(i.cookie.MaxAge.Seconds()),
	})
	return nil
}

type contextKey struct{}

// WithSessionID returns a copy of ctx carrying the session ID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKey{}, sessionID)
}

// FromContext returns the session ID stored by Middleware.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// Middleware identifies every request and stores the session ID in its
// context.
func (i *Identifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := i.Identify(w, r)
		if err != nil {
			log.Err(err).Str("path", r.URL.Path).Msg("Failed to identify session")
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
	})
}
