package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-crm-connector/auth"
	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/sessions"
)

// InstallHandler sends the browser to the provider's consent page.
func (s *Server) InstallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := sessions.FromContext(r.Context())
		http.Redirect(w, r, s.services.Handshake.AuthorizeURL(sessionID), http.StatusFound)
	}
}

func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := sessions.FromContext(r.Context())

		redirect, err := s.services.Handshake.Callback(r.Context(), sessionID, auth.CallbackParamsFromValues(r.URL.Query()))
		switch {
		case err == nil:
			// Restart the cookie lifetime from the moment of authorization
			if err := s.services.Sessions.Issue(w, sessionID); err != nil {
				log.Err(err).Str("session_id", sessionID).Msg("Failed to reissue session cookie")
			}
		case apperrors.Is(err, apperrors.ErrMissingAuthorizationCode):
			log.Debug().Str("session_id", sessionID).Msg("Callback without code, restarting handshake")
		default:
			log.Warn().Err(err).Str("session_id", sessionID).Msg("Handshake did not complete")
		}

		http.Redirect(w, r, redirect, http.StatusFound)
	}
}
