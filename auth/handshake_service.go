package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-crm-connector/auth/flowrepo"
	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/oauthmodel"
	"github.com/jrsteele09/go-crm-connector/token"
	"github.com/jrsteele09/go-crm-connector/token/exchange"
)

// Redirect targets at the end of a callback.
const (
	HomePath    = "/"
	InstallPath = "/api/install"
	ErrorPath   = "/error"
)

// TokenStorer receives the credentials of a completed handshake.
type TokenStorer interface {
	StoreExchange(sessionID string, result *oauthmodel.ExchangeResult) error
}

// Deps holds the collaborators of the HandshakeService
type Deps struct {
	Exchanger token.Exchanger // Performs the authorization-code exchange
	Tokens    TokenStorer     // Stores the resulting credentials
	Flows     flowrepo.Repo   // Records per-session handshake state
}

// HandshakeService drives the authorization-code handshake for browser
// sessions.
type HandshakeService struct {
	deps         Deps
	oauth2Config *oauth2.Config
	credentials  token.ClientCredentials
	nowTime      func() time.Time
}

type HandshakeServiceOption func(*HandshakeService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) HandshakeServiceOption {
	return func(hs *HandshakeService) {
		hs.nowTime = nowFunc
	}
}

func NewHandshakeService(
	deps Deps,
	endpoint oauth2.Endpoint,
	credentials token.ClientCredentials,
	scopes []string,
	options ...HandshakeServiceOption,
) (*HandshakeService, error) {
	if deps.Exchanger == nil {
		return nil, fmt.Errorf("[NewHandshakeService] exchanger is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("[NewHandshakeService] token storer is required")
	}
	if deps.Flows == nil {
		return nil, fmt.Errorf("[NewHandshakeService] flow repo is required")
	}
	if endpoint.AuthURL == "" {
		return nil, fmt.Errorf("[NewHandshakeService] authorize URL is required")
	}

	hs := &HandshakeService{
		deps: deps,
		oauth2Config: &oauth2.Config{
			ClientID:     credentials.ClientID,
			ClientSecret: credentials.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  credentials.RedirectURI,
			Scopes:       scopes,
		},
		credentials: credentials,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(hs)
	}
	return hs, nil
}

// AuthorizeURL returns the provider consent URL for the session and marks
// the session as awaiting consent. Credential stores are not touched.
func (hs *HandshakeService) AuthorizeURL(sessionID string) string {
	// The provider's redirect carries no state; the session cookie ties the
	// callback to the browser.
	authURL := hs.oauth2Config.AuthCodeURL("")

	hs.setState(sessionID, flowrepo.AwaitingConsent, "")
	log.Info().Str("session_id", sessionID).Msg("Redirecting to provider consent page")
	return authURL
}

// Callback completes the handshake from the provider's redirect. It always
// returns the path the browser should be sent to; a non-nil error means the
// session did not become authenticated.
func (hs *HandshakeService) Callback(ctx context.Context, sessionID string, params CallbackParams) (string, error) {
	if params.Code == "" {
		if params.Error != "" {
			msg := params.providerMessage()
			hs.setState(sessionID, flowrepo.Error, msg)
			log.Warn().
				Str("session_id", sessionID).
				Str("provider_error", params.Error).
				Msg("Provider denied authorization")
			return ErrorRedirect(msg), apperrors.Wrapf(apperrors.ErrAuthorizationDenied, "[HandshakeService Callback] %s", params.Error)
		}
		return InstallPath, apperrors.Wrapf(apperrors.ErrMissingAuthorizationCode, "[HandshakeService Callback] session %s", sessionID)
	}

	req := oauthmodel.NewAuthorizationCodeRequest(hs.credentials.ClientID, hs.credentials.ClientSecret, hs.credentials.RedirectURI, params.Code)
	result, err := hs.deps.Exchanger.Exchange(ctx, req)
	if err != nil {
		msg := diagnostic(err)
		hs.setState(sessionID, flowrepo.Error, msg)
		log.Err(err).
			Str("grant_type", oauthmodel.AuthorizationCodeGrant.String()).
			Str("session_id", sessionID).
			Msg("Authorization code exchange failed")
		return ErrorRedirect(msg), fmt.Errorf("[HandshakeService Callback] %w", err)
	}

	if err := hs.deps.Tokens.StoreExchange(sessionID, result); err != nil {
		hs.setState(sessionID, flowrepo.Error, err.Error())
		log.Err(err).Str("session_id", sessionID).Msg("Failed to store exchanged tokens")
		return ErrorRedirect("failed to store credentials"), fmt.Errorf("[HandshakeService Callback] %w", err)
	}

	hs.setState(sessionID, flowrepo.Authenticated, "")
	log.Info().
		Str("grant_type", oauthmodel.AuthorizationCodeGrant.String()).
		Str("session_id", sessionID).
		Msg("Session authenticated")
	return HomePath, nil
}

// State returns the session's handshake state, UNSTARTED when unknown.
func (hs *HandshakeService) State(sessionID string) flowrepo.State {
	fs, err := hs.deps.Flows.Get(sessionID)
	if err != nil {
		return flowrepo.Unstarted
	}
	return fs.State
}

func (hs *HandshakeService) setState(sessionID string, state flowrepo.State, msg string) {
	err := hs.deps.Flows.Upsert(sessionID, &flowrepo.FlowState{
		State:      state,
		Diagnostic: msg,
		UpdatedAt:  hs.nowTime(),
	})
	if err != nil {
		log.Err(err).Str("session_id", sessionID).Str("state", state.String()).Msg("Failed to record handshake state")
	}
}

// ErrorRedirect builds the error page path carrying msg.
func ErrorRedirect(msg string) string {
	return ErrorPath + "?msg=" + url.QueryEscape(msg)
}

func diagnostic(err error) string {
	var exErr *exchange.Error
	if apperrors.As(err, &exErr) {
		return exErr.Diagnostic()
	}
	return err.Error()
}
