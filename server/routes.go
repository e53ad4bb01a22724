package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) initRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.LoggingMiddleware)
	s.router.Use(s.RecoverMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(s.FrameSecurityMiddleware)

	s.router.NotFound(s.NotFoundHandler())

	s.RegisterRoute(s.router, http.MethodGet, RouteHealth, s.HealthHandler())
	s.RegisterRoute(s.router, http.MethodGet, RouteError, s.ErrorPageHandler())

	// Everything that needs a browser session
	s.router.Group(func(r chi.Router) {
		r.Use(s.services.Sessions.Middleware)

		// Handshake
		s.RegisterRoute(r, http.MethodGet, RouteInstall, s.InstallHandler())
		s.RegisterRoute(r, http.MethodGet, RouteCallback, s.OAuthCallbackHandler())

		// API routes
		r.Group(func(r chi.Router) {
			r.Use(s.CorsMiddleware)
			r.Use(middleware.NoCache)

			s.RegisterRoute(r, http.MethodGet, RouteAPIIsAuthorized, s.IsAuthorizedHandler())
			s.RegisterRoute(r, http.MethodGet, RouteAPIContacts, s.ContactsHandler())
			s.RegisterRoute(r, http.MethodGet, RouteAPIEmails, s.EmailsHandler())
			for _, route := range []string{RouteAPIIsAuthorized, RouteAPIContacts, RouteAPIEmails} {
				r.Options(route, func(w http.ResponseWriter, r *http.Request) {})
			}
		})
	})

	if s.fileServer != nil {
		s.router.Group(func(r chi.Router) {
			r.Use(middleware.Compress(5))
			r.Use(s.CacheMiddleware)
			s.RegisterRoute(r, http.MethodGet, RouteStatic, s.fileServer)
		})
	}
}
