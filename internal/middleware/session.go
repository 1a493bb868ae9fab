// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ykarataev/accountd/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// SessionCookie is the name of the cookie carrying the session handle.
const SessionCookie = "session"

// DefaultLanding is where authenticated users are sent when no safe "next"
// destination is available.
const DefaultLanding = "/"

// PrincipalResolver resolves a session token to its authenticated user.
type PrincipalResolver interface {
	// CurrentPrincipal returns the user bound to the token, or
	// models.ErrSessionExpired when the token is absent, unknown or expired.
	CurrentPrincipal(ctx context.Context, token string) (models.User, error)
}

// SessionAuth is a middleware that resolves the session cookie on every
// request. When the cookie maps to a live session the user is stored in the
// request context for downstream handlers; an expired or unknown handle lets
// the request continue anonymously. Any other resolver failure, such as a
// storage outage, is logged and answered with 500 rather than downgrading
// the caller to anonymous. Gating happens separately in RequireAuthenticated
// so public routes stay reachable.
func SessionAuth(resolver PrincipalResolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.CurrentPrincipal(r.Context(), cookie.Value)
			if errors.Is(err, models.ErrSessionExpired) {
				// Expired or unknown handle; treat the request as anonymous.
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				log.Error("failed to resolve session",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthenticated gates protected routes. Anonymous requests are
// redirected to the login page with the originally requested path preserved
// in the "next" query parameter.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserFromContext(r.Context()); !ok {
			login := url.URL{
				Path:     "/login",
				RawQuery: url.Values{"next": {r.URL.RequestURI()}}.Encode(),
			}
			http.Redirect(w, r, login.String(), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext extracts the authenticated user from the request
// context. The second return value is false for anonymous requests.
func GetUserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// WithUser returns a context carrying the given user as the authenticated
// principal. Used by handler tests.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ResolveNext decides where to send the user after login. Only relative
// paths are accepted; anything carrying a scheme or host, or a
// protocol-relative "//host" form, falls back to the default landing page so
// the login flow cannot be used as an open redirector.
func ResolveNext(next string) string {
	if next == "" {
		return DefaultLanding
	}
	u, err := url.Parse(next)
	if err != nil {
		return DefaultLanding
	}
	if u.Scheme != "" || u.Host != "" {
		return DefaultLanding
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return DefaultLanding
	}
	// Some browsers rewrite backslashes to forward slashes, turning
	// "/\evil.com" into a protocol-relative URL.
	if strings.ContainsRune(u.Path, '\\') {
		return DefaultLanding
	}
	return next
}
