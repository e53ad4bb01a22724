package config

import "time"

type SecurityConfig interface {
	GetSessionSecret() string
	GetSessionCookieName() string
	GetSessionMaxAge() time.Duration
	GetCookieSecure() bool
}

type Security struct {
	SessionSecret     string        `env:"SESSION_SECRET"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"sessionID"`
	SessionMaxAge     time.Duration `env:"SESSION_MAX_AGE"     envDefault:"720h"` // 30 days
	CookieSecure      bool          `env:"COOKIE_SECURE"       envDefault:"false"`
}

var _ SecurityConfig = Security{}

func (s Security) GetSessionSecret() string {
	return s.SessionSecret
}

func (s Security) GetSessionCookieName() string {
	return s.SessionCookieName
}

func (s Security) GetSessionMaxAge() time.Duration {
	return s.SessionMaxAge
}

func (s Security) GetCookieSecure() bool {
	return s.CookieSecure
}
