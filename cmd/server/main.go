package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-crm-connector/auth"
	"github.com/jrsteele09/go-crm-connector/auth/flowrepo"
	"github.com/jrsteele09/go-crm-connector/crm"
	"github.com/jrsteele09/go-crm-connector/internal/config"
	"github.com/jrsteele09/go-crm-connector/internal/telemetry"
	"github.com/jrsteele09/go-crm-connector/server"
	"github.com/jrsteele09/go-crm-connector/sessions"
	"github.com/jrsteele09/go-crm-connector/token"
	"github.com/jrsteele09/go-crm-connector/token/access"
	"github.com/jrsteele09/go-crm-connector/token/exchange"
	"github.com/jrsteele09/go-crm-connector/token/refresh"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("panic", fmt.Sprint(r)).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(c)
	if err := c.Validate(); err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, c.GetAppName(), c.GetOtelEndpoint())
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Err(err).Msg("Failed to flush traces")
		}
	}()

	handler, err := newHandler(ctx, c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newHandler wires the token lifecycle, handshake and CRM gateway behind the
// HTTP routes.
func newHandler(ctx context.Context, c config.Config) (http.Handler, error) {
	endpoint, err := auth.ResolveEndpoint(ctx, auth.EndpointConfig{
		IssuerURL: c.GetIssuerURL(),
		AuthURL:   c.GetAuthURL(),
		TokenURL:  c.GetTokenURL(),
	})
	if err != nil {
		return nil, err
	}

	credentials := token.ClientCredentials{
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		RedirectURI:  c.GetRedirectURI(),
	}

	exchanger := exchange.NewClient(endpoint.TokenURL, exchange.WithTimeout(c.GetExchangeTimeout()))

	cache := access.NewInMemoryCache(access.WithLifetimeFraction(c.GetAccessTokenLifetimeFraction()))
	cache.StartJanitor(ctx, c.GetCacheCleanupInterval())

	manager := token.New(refresh.NewInMemoryRepo(), cache, exchanger, credentials)

	handshake, err := auth.NewHandshakeService(
		auth.Deps{Exchanger: exchanger, Tokens: manager, Flows: flowrepo.NewInMemoryRepo()},
		endpoint,
		credentials,
		c.GetScopes(),
	)
	if err != nil {
		return nil, err
	}

	identifier, err := sessions.NewIdentifier(c.GetSessionSecret(), sessions.CookieOptions{
		Name:   c.GetSessionCookieName(),
		MaxAge: c.GetSessionMaxAge(),
		Secure: c.GetCookieSecure(),
	})
	if err != nil {
		return nil, err
	}

	return server.New(c, server.Services{
		Sessions:  identifier,
		Handshake: handshake,
		Tokens:    manager,
		CRM:       crm.NewGateway(c.GetAPIBaseURL(), manager, crm.WithTimeout(c.GetUpstreamTimeout())),
	})
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
