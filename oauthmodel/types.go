package oauthmodel

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Used in: the install → callback handshake
	// Token request includes: code, client_id, client_secret, redirect_uri
	// Returns: access_token, refresh_token, expires_in
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Used in: cache misses on the read path (get new access token without re-consent)
	// Token request includes: refresh_token, client_id, client_secret, redirect_uri
	// Returns: new access_token and (possibly rotated) refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

func (g GrantType) String() string {
	return string(g)
}
