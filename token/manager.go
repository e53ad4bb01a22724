package token

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/oauthmodel"
	"github.com/jrsteele09/go-crm-connector/token/access"
	"github.com/jrsteele09/go-crm-connector/token/refresh"
)

// Exchanger performs a single token endpoint call.
type Exchanger interface {
	Exchange(ctx context.Context, req oauthmodel.ExchangeRequest) (*oauthmodel.ExchangeResult, error)
}

// ClientCredentials identify this application at the token endpoint.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Manager owns the token lifecycle for every browser session: it is the only
// writer of the refresh store and access cache, and the read path for any
// code needing a valid access token.
type Manager struct {
	refreshRepo refresh.Repo
	accessCache access.Cache
	exchanger   Exchanger
	credentials ClientCredentials

	// refreshes coalesces concurrent refreshes per session ID
	refreshes singleflight.Group
	tracer    trace.Tracer
}

type ManagerOption func(*Manager)

func WithTracer(tracer trace.Tracer) ManagerOption {
	return func(m *Manager) {
		m.tracer = tracer
	}
}

func New(refreshRepo refresh.Repo, accessCache access.Cache, exchanger Exchanger, credentials ClientCredentials, options ...ManagerOption) *Manager {
	m := &Manager{
		refreshRepo: refreshRepo,
		accessCache: accessCache,
		exchanger:   exchanger,
		credentials: credentials,
		tracer:      otel.Tracer("github.com/jrsteele09/go-crm-connector/token"),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Credentials returns the client credentials used for exchanges.
func (m *Manager) Credentials() ClientCredentials {
	return m.credentials
}

// IsAuthorized reports whether the session has a stored refresh token.
func (m *Manager) IsAuthorized(sessionID string) bool {
	rt, err := m.refreshRepo.Get(sessionID)
	return err == nil && rt != nil
}

// StoreExchange records a successful exchange for the session. The refresh
// token is overwritten with whatever the provider returned; a response
// without one leaves the stored token in place.
func (m *Manager) StoreExchange(sessionID string, result *oauthmodel.ExchangeResult) error {
	if result == nil {
		return fmt.Errorf("[Manager StoreExchange] nil exchange result")
	}
	if result.RefreshToken != "" {
		if err := m.refreshRepo.Upsert(sessionID, result.RefreshToken); err != nil {
			return fmt.Errorf("[Manager StoreExchange] refresh upsert: %w", err)
		}
	}
	if err := m.accessCache.Put(sessionID, result.AccessToken, result.ExpiresIn); err != nil {
		return fmt.Errorf("[Manager StoreExchange] access cache put: %w", err)
	}
	return nil
}

// GetValidAccess returns a non-expired access token for the session,
// refreshing it through the token endpoint on a cache miss.
//
// Errors match errors.ErrUnauthenticated when the session never completed the
// handshake, and errors.ErrTokenExchange when the refresh failed. A failed
// refresh keeps the stored refresh token so a later request can retry.
func (m *Manager) GetValidAccess(ctx context.Context, sessionID string) (string, error) {
	ctx, span := m.tracer.Start(ctx, "token.get_valid_access")
	defer span.End()

	if at, err := m.accessCache.Get(sessionID); err == nil {
		span.SetAttributes(attribute.Bool("token.cache_hit", true))
		return at.Token, nil
	}
	span.SetAttributes(attribute.Bool("token.cache_hit", false))

	// One exchange per session at a time. The flight outlives any single
	// caller's cancellation because its result is shared; the exchange
	// client's own timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := m.refreshes.Do(sessionID, func() (interface{}, error) {
		return m.refresh(flightCtx, sessionID)
	})
	span.SetAttributes(attribute.Bool("token.refresh_shared", shared))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "access token unavailable")
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) refresh(ctx context.Context, sessionID string) (string, error) {
	// A flight that finished just before this one started may have filled
	// the cache already.
	if at, err := m.accessCache.Get(sessionID); err == nil {
		return at.Token, nil
	}

	rt, err := m.refreshRepo.Get(sessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.Wrapf(apperrors.ErrUnauthenticated, "[Manager GetValidAccess] session %s", sessionID)
		}
		return "", fmt.Errorf("[Manager GetValidAccess] refresh lookup: %w", err)
	}

	log.Debug().Str("session_id", sessionID).Msg("Refreshing expired access token")

	req := oauthmodel.NewRefreshTokenRequest(m.credentials.ClientID, m.credentials.ClientSecret, m.credentials.RedirectURI, rt.Token)
	result, err := m.exchanger.Exchange(ctx, req)
	if err != nil {
		log.Err(err).
			Str("grant_type", oauthmodel.RefreshTokenGrant.String()).
			Str("session_id", sessionID).
			Msg("Token refresh failed")
		if !apperrors.Is(err, apperrors.ErrTokenExchange) {
			err = fmt.Errorf("%w: %w", apperrors.ErrTokenExchange, err)
		}
		return "", fmt.Errorf("[Manager GetValidAccess] refresh: %w", err)
	}

	if err := m.StoreExchange(sessionID, result); err != nil {
		return "", err
	}

	log.Info().
		Str("grant_type", oauthmodel.RefreshTokenGrant.String()).
		Str("session_id", sessionID).
		Bool("rotated", result.RefreshToken != "" && result.RefreshToken != rt.Token).
		Msg("Access token refreshed")

	return result.AccessToken, nil
}
