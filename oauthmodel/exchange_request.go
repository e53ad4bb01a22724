package oauthmodel

import (
	"errors"
	"net/url"
)

var (
	ErrUnsupportedGrantType = errors.New("unsupported grant type")
	ErrMissingCode          = errors.New("authorization_code grant requires a code")
	ErrMissingRefreshToken  = errors.New("refresh_token grant requires a refresh token")
)

// ExchangeRequest holds parameters for a token endpoint request.
// Encoded as application/x-www-form-urlencoded per RFC 6749 §4.1.3 and §6.
type ExchangeRequest struct {
	// GrantType selects between the authorization code and refresh token flows.
	GrantType GrantType

	// ClientID identifies this application to the provider.
	ClientID string

	// ClientSecret is the confidential client credential.
	// Security: Never log or expose this value
	ClientSecret string

	// RedirectURI must match the URI used in the authorize request.
	RedirectURI string

	// Code is the one-time authorization code (authorization_code grant only).
	Code string

	// RefreshToken is the stored refresh credential (refresh_token grant only).
	RefreshToken string
}

// NewAuthorizationCodeRequest builds an authorization_code grant request.
func NewAuthorizationCodeRequest(clientID, clientSecret, redirectURI, code string) ExchangeRequest {
	return ExchangeRequest{
		GrantType:    AuthorizationCodeGrant,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		Code:         code,
	}
}

// NewRefreshTokenRequest builds a refresh_token grant request.
func NewRefreshTokenRequest(clientID, clientSecret, redirectURI, refreshToken string) ExchangeRequest {
	return ExchangeRequest{
		GrantType:    RefreshTokenGrant,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		RefreshToken: refreshToken,
	}
}

// Validate checks the request carries the credential its grant type needs.
func (r ExchangeRequest) Validate() error {
	switch r.GrantType {
	case AuthorizationCodeGrant:
		if r.Code == "" {
			return ErrMissingCode
		}
	case RefreshTokenGrant:
		if r.RefreshToken == "" {
			return ErrMissingRefreshToken
		}
	default:
		return ErrUnsupportedGrantType
	}
	return nil
}

// Form encodes the request body.
func (r ExchangeRequest) Form() url.Values {
	form := url.Values{}
	form.Set("grant_type", r.GrantType.String())
	form.Set("client_id", r.ClientID)
	form.Set("client_secret", r.ClientSecret)
	form.Set("redirect_uri", r.RedirectURI)
	switch r.GrantType {
	case AuthorizationCodeGrant:
		form.Set("code", r.Code)
	case RefreshTokenGrant:
		form.Set("refresh_token", r.RefreshToken)
	}
	return form
}
