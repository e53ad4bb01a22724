package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// EndpointConfig locates the provider's authorize and token endpoints.
type EndpointConfig struct {
	IssuerURL string // discovery is used when set
	AuthURL   string
	TokenURL  string
}

// ResolveEndpoint returns the provider endpoint, discovering it from the
// issuer's OpenID configuration when an issuer is configured.
func ResolveEndpoint(ctx context.Context, cfg EndpointConfig) (oauth2.Endpoint, error) {
	if cfg.IssuerURL == "" {
		if cfg.AuthURL == "" || cfg.TokenURL == "" {
			return oauth2.Endpoint{}, fmt.Errorf("[auth ResolveEndpoint] authorize and token URLs are required without an issuer")
		}
		return oauth2.Endpoint{
			AuthURL:   cfg.AuthURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		}, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return oauth2.Endpoint{}, fmt.Errorf("[auth ResolveEndpoint] failed to discover provider %s: %w", cfg.IssuerURL, err)
	}
	endpoint := provider.Endpoint()
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return endpoint, nil
}
