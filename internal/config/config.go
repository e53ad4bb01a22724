package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
)

// CallbackPath is where the provider sends the browser back after consent.
const CallbackPath = "/oauth-callback"

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	Validate() error
}

type EnvConfig interface {
	GetHost() string
	GetPort() string
	GetBaseURL() string
	GetAppName() string
	GetEnv() string
	IsDev() bool
	GetLogLevel() string
	GetStaticDir() string
	GetOtelEndpoint() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
}

var _ Config = mainConfig{}

// Load reads a .env file when one exists and then parses the process
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("[config Load] failed to load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFromMap parses configuration from the given variables only. The process
// environment is ignored.
func LoadFromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var c mainConfig
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return nil, fmt.Errorf("[config parse] %w", err)
	}
	c.OAuth.Scopes = trimCSV(c.OAuth.Scopes)
	c.Cors.Origins = trimCSV(c.Cors.Origins)

	if c.Security.SessionSecret == "" && c.IsDev() {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("[config parse] failed to generate session secret: %w", err)
		}
		c.Security.SessionSecret = secret
	}
	return c, nil
}

// GetRedirectURI returns the configured redirect URI or derives one from the
// host and port.
func (c mainConfig) GetRedirectURI() string {
	if c.OAuth.RedirectURI != "" {
		return c.OAuth.RedirectURI
	}
	return c.GetBaseURL() + CallbackPath
}

func (c mainConfig) Validate() error {
	var missing []string
	if c.OAuth.ClientID == "" {
		missing = append(missing, "OAUTH_CLIENT_ID")
	}
	if c.OAuth.ClientSecret == "" {
		missing = append(missing, "OAUTH_CLIENT_SECRET")
	}
	if c.Security.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "missing %s", strings.Join(missing, ", "))
	}
	if c.OAuth.LifetimeFraction <= 0 || c.OAuth.LifetimeFraction > 1 {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "ACCESS_TOKEN_LIFETIME_FRACTION must be in (0, 1], got %v", c.OAuth.LifetimeFraction)
	}
	return nil
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
