package oauthmodel

import "errors"

var ErrIncompleteTokenResponse = errors.New("token response missing access_token or expires_in")

// ExchangeResult is the provider's token endpoint response.
// This is the standard OAuth2 token endpoint response format as defined in RFC 6749 §5.1.
type ExchangeResult struct {
	// AccessToken is the short-lived bearer credential.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived credential used to obtain new access tokens.
	// Behavior: May be rotated on every refresh; always store what the provider returns
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 1800 (for 30 minutes)
	ExpiresIn int64 `json:"expires_in"`

	// TokenType is normally "bearer".
	TokenType string `json:"token_type,omitempty"`
}

// Validate checks the fields the token lifecycle depends on are present.
func (r *ExchangeResult) Validate() error {
	if r.AccessToken == "" || r.ExpiresIn <= 0 {
		return ErrIncompleteTokenResponse
	}
	return nil
}
