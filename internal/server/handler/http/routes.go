// Package http provides HTTP routing and middleware configuration
// for the account service.
package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ykarataev/accountd/internal/middleware"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter constructs and returns an HTTP handler that serves the account
// API. It applies JSON content-type enforcement, request logging, and
// session resolution, and mounts the public auth endpoints plus the
// session-gated profile routes.
//
// Routes:
//
//	POST /register         → authHandler.Register
//	POST /login            → authHandler.Login
//	POST /logout           → authHandler.Logout
//	POST /forgot-password  → resetHandler.ForgotPassword
//	POST /reset-password   → resetHandler.ResetPassword
//	GET  /profile          → profileHandler.Me      (protected)
//	POST /profile          → profileHandler.Update  (protected)
//	GET  /healthz          → liveness check
//
// Every request passes through AllowContentType to reject non-JSON bodies,
// then WithRequestLogging, then SessionAuth to resolve the session cookie.
// Protected routes additionally pass through RequireAuthenticated, which
// redirects anonymous requests to /login with the requested path preserved.
func NewRouter(
	authHandler *AuthHandler,
	resetHandler *ResetHandler,
	profileHandler *ProfileHandler,
	resolver middleware.PrincipalResolver,
	db Pinger,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Resolve the session cookie into a principal, when present
	r.Use(middleware.SessionAuth(resolver, logger))

	// Public endpoints
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)
	r.Post("/forgot-password", resetHandler.ForgotPassword)
	r.Post("/reset-password", resetHandler.ResetPassword)

	// Protected group: requires a live session
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthenticated)
		r.Get("/profile", profileHandler.Me)
		r.Post("/profile", profileHandler.Update)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
