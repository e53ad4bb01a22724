package server

import (
	"net/http"
)

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.GetAppName(),
		})
	}
}

// ErrorPageHandler reports a failed handshake to the browser.
func (s *Server) ErrorPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg := r.URL.Query().Get("msg")
		if msg == "" {
			msg = "unknown error"
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, "not_found", "404 - Page Not Found", http.StatusNotFound)
	}
}
