package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	Host         string `env:"HOST"          envDefault:"localhost"`
	Port         string `env:"PORT"          envDefault:"8080"`
	AppName      string `env:"APP_NAME"      envDefault:"CRM Connector"`
	Environment  string `env:"ENV"           envDefault:"DEV"`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
	StaticDir    string `env:"STATIC_DIR"`
	OtelEndpoint string `env:"OTEL_ENDPOINT"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetHost() string {
	return e.Host
}

// GetPort returns the listen address, e.g. ":8080"
func (e EnvVars) GetPort() string {
	return ":" + strings.TrimPrefix(e.Port, ":")
}

// GetBaseURL returns the externally visible base URL (e.g., "http://localhost:8080")
func (e EnvVars) GetBaseURL() string {
	return fmt.Sprintf("http://%s:%s", e.Host, strings.TrimPrefix(e.Port, ":"))
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Environment
}

func (e EnvVars) IsDev() bool {
	return strings.EqualFold(e.Environment, "DEV")
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetStaticDir() string {
	return e.StaticDir
}

func (e EnvVars) GetOtelEndpoint() string {
	return e.OtelEndpoint
}
