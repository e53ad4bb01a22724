package server

import (
	"net/http"

	"github.com/jrsteele09/go-crm-connector/sessions"
)

func (s *Server) IsAuthorizedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := sessions.FromContext(r.Context())
		writeJSON(w, http.StatusOK, s.services.Tokens.IsAuthorized(sessionID))
	}
}

func (s *Server) ContactsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := sessions.FromContext(r.Context())

		contacts, err := s.services.CRM.GetContacts(r.Context(), sessionID)
		if err != nil {
			writeAPIError(w, r, sessionID, err)
			return
		}
		writeJSON(w, http.StatusOK, contacts)
	}
}

// EmailsHandler relays the upstream payload as received.
func (s *Server) EmailsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := sessions.FromContext(r.Context())

		emails, err := s.services.CRM.GetEmails(r.Context(), sessionID)
		if err != nil {
			writeAPIError(w, r, sessionID, err)
			return
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(emails)
	}
}
