package exchange

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/oauthmodel"
)

// Error describes a failed token exchange. It matches
// errors.ErrTokenExchange with errors.Is.
type Error struct {
	GrantType  oauthmodel.GrantType
	StatusCode int    // 0 when no response was received
	Body       string // raw provider response body, if any
	Err        error  // transport or decode failure, if any
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s exchange failed with status %d: %s", e.GrantType, e.StatusCode, e.Diagnostic())
	case e.Err != nil:
		return fmt.Sprintf("%s exchange failed: %v", e.GrantType, e.Err)
	default:
		return fmt.Sprintf("%s exchange failed", e.GrantType)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{apperrors.ErrTokenExchange}
	}
	return []error{apperrors.ErrTokenExchange, e.Err}
}

// providerError covers the error shapes of RFC 6749 §5.2 and HubSpot.
type providerError struct {
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Diagnostic returns the most specific message the provider gave, falling
// back to the raw body and then the transport error.
func (e *Error) Diagnostic() string {
	body := strings.TrimSpace(e.Body)
	if body != "" {
		var pe providerError
		if err := json.Unmarshal([]byte(body), &pe); err == nil {
			switch {
			case pe.Message != "":
				return pe.Message
			case pe.ErrorDescription != "":
				return pe.ErrorDescription
			case pe.Error != "":
				return pe.Error
			}
		}
		return body
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "token exchange failed"
}
