package crm

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
)

// APIError is a non-2xx response from the CRM API. Body is the upstream
// payload, unmodified.
type APIError struct {
	Path       string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crm api %s returned status %d", e.Path, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return apperrors.ErrUpstreamAPI
}
