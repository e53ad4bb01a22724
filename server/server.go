package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-crm-connector/auth"
	"github.com/jrsteele09/go-crm-connector/crm"
	"github.com/jrsteele09/go-crm-connector/internal/config"
	"github.com/jrsteele09/go-crm-connector/sessions"
)

// Authorizer reports whether a session holds credentials.
type Authorizer interface {
	IsAuthorized(sessionID string) bool
}

// CRM is the subset of the gateway the HTTP layer serves.
type CRM interface {
	GetContacts(ctx context.Context, sessionID string) ([]crm.Contact, error)
	GetEmails(ctx context.Context, sessionID string) (json.RawMessage, error)
}

// Services holds the collaborators behind the HTTP routes
type Services struct {
	Sessions  *sessions.Identifier
	Handshake *auth.HandshakeService
	Tokens    Authorizer
	CRM       CRM
}

type Server struct {
	env        string // Environment (e.g. "DEV", "PROD")
	router     *chi.Mux
	routes     []string
	fileServer http.Handler
	config     config.Config
	services   Services
}

func New(cfg config.Config, services Services) (*Server, error) {
	if services.Sessions == nil || services.Handshake == nil || services.Tokens == nil || services.CRM == nil {
		return nil, fmt.Errorf("[Server New] sessions, handshake, tokens and crm services are required")
	}

	s := &Server{
		env:        cfg.GetEnv(),
		router:     chi.NewRouter(),
		config:     cfg,
		services:   services,
		fileServer: FileServerHandler(cfg.GetStaticDir()),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RegisterRoute adds a handler for method and pattern on router.
func (s *Server) RegisterRoute(router chi.Router, method, pattern string, handler http.Handler) {
	s.routes = append(s.routes, method+" "+pattern)
	router.Method(method, pattern, handler)
}

// Routes returns the registered routes as "METHOD pattern".
func (s *Server) Routes() []string {
	return s.routes
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, _ := strings.Cut(route, " ")
		log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
	}
}

