package server

import "github.com/jrsteele09/go-crm-connector/auth"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Handshake
	RouteInstall  = auth.InstallPath
	RouteCallback = "/oauth-callback"
	RouteError    = auth.ErrorPath

	// API Routes
	RouteAPIIsAuthorized = "/api/isAuthorized"
	RouteAPIContacts     = "/api/contacts"
	RouteAPIEmails       = "/api/emails"

	// Operational
	RouteHealth = "/healthz"

	// Static files, when a static directory is configured
	RouteStatic = "/*"
)
