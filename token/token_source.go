package token

import (
	"context"

	"golang.org/x/oauth2"
)

// sessionTokenSource adapts Manager to oauth2.TokenSource for one session.
type sessionTokenSource struct {
	ctx       context.Context
	manager   *Manager
	sessionID string
}

// TokenSource returns an oauth2.TokenSource that yields the session's
// current access token. It is meant for oauth2.Transport and performs no
// caching of its own; the Manager's cache is authoritative.
func (m *Manager) TokenSource(ctx context.Context, sessionID string) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, manager: m, sessionID: sessionID}
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	at, err := s.manager.GetValidAccess(s.ctx, s.sessionID)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: at, TokenType: "Bearer"}, nil
}
