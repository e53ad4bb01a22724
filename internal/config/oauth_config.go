package config

import "time"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
	GetRedirectURI() string
	GetIssuerURL() string
	GetAuthURL() string
	GetTokenURL() string
	GetAPIBaseURL() string
	GetExchangeTimeout() time.Duration
	GetUpstreamTimeout() time.Duration
	GetAccessTokenLifetimeFraction() float64
	GetCacheCleanupInterval() time.Duration
}

// OAuth holds the provider registration and token endpoint settings.
// Defaults target HubSpot.
type OAuth struct {
	ClientID             string        `env:"OAUTH_CLIENT_ID"`
	ClientSecret         string        `env:"OAUTH_CLIENT_SECRET"`
	Scopes               []string      `env:"OAUTH_SCOPES"                   envSeparator:"," envDefault:"sales-email-read,crm.objects.contacts.read,crm.objects.marketing_events.read,content"`
	RedirectURI          string        `env:"OAUTH_REDIRECT_URI"`
	IssuerURL            string        `env:"OAUTH_ISSUER_URL"`
	AuthURL              string        `env:"OAUTH_AUTH_URL"                 envDefault:"https://app.hubspot.com/oauth/authorize"`
	TokenURL             string        `env:"OAUTH_TOKEN_URL"                envDefault:"https://api.hubapi.com/oauth/v1/token"`
	APIBaseURL           string        `env:"API_BASE_URL"                   envDefault:"https://api.hubapi.com"`
	ExchangeTimeout      time.Duration `env:"EXCHANGE_TIMEOUT"               envDefault:"10s"`
	UpstreamTimeout      time.Duration `env:"UPSTREAM_TIMEOUT"               envDefault:"30s"`
	LifetimeFraction     float64       `env:"ACCESS_TOKEN_LIFETIME_FRACTION" envDefault:"0.75"`
	CacheCleanupInterval time.Duration `env:"CACHE_CLEANUP_INTERVAL"         envDefault:"1m"`
}

func (o OAuth) GetClientID() string {
	return o.ClientID
}

func (o OAuth) GetClientSecret() string {
	return o.ClientSecret
}

func (o OAuth) GetScopes() []string {
	return o.Scopes
}

func (o OAuth) GetIssuerURL() string {
	return o.IssuerURL
}

func (o OAuth) GetAuthURL() string {
	return o.AuthURL
}

func (o OAuth) GetTokenURL() string {
	return o.TokenURL
}

func (o OAuth) GetAPIBaseURL() string {
	return o.APIBaseURL
}

func (o OAuth) GetExchangeTimeout() time.Duration {
	return o.ExchangeTimeout
}

func (o OAuth) GetUpstreamTimeout() time.Duration {
	return o.UpstreamTimeout
}

// GetAccessTokenLifetimeFraction is the share of the provider-declared
// lifetime an access token is cached for.
func (o OAuth) GetAccessTokenLifetimeFraction() float64 {
	return o.LifetimeFraction
}

func (o OAuth) GetCacheCleanupInterval() time.Duration {
	return o.CacheCleanupInterval
}
