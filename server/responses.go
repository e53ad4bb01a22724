package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-crm-connector/crm"
	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/token/exchange"
)

const contentTypeJSON = "application/json; charset=utf-8"

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes an OAuth2-style error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

// writeAPIError maps a token or upstream failure onto the API response.
// Upstream CRM errors are relayed with their status and body unchanged.
func writeAPIError(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	var apiErr *crm.APIError
	var exErr *exchange.Error

	switch {
	case errors.As(err, &apiErr):
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(apiErr.StatusCode)
		_, _ = w.Write(apiErr.Body)

	case apperrors.Is(err, apperrors.ErrUnauthenticated):
		writeJSONError(w, "unauthenticated", "session has not completed authorization", http.StatusUnauthorized)

	case apperrors.Is(err, apperrors.ErrTokenExchange):
		description := "token refresh failed"
		if errors.As(err, &exErr) {
			description = exErr.Diagnostic()
		}
		writeJSONError(w, "token_exchange_failed", description, http.StatusBadGateway)

	default:
		log.Err(err).Str("session_id", sessionID).Str("path", r.URL.Path).Msg("API request failed")
		writeJSONError(w, "internal_error", "internal server error", http.StatusInternalServerError)
	}
}
