// Package http provides HTTP handlers for account registration,
// authenticated sessions and the password reset flow.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ykarataev/accountd/internal/middleware"
	"github.com/ykarataev/accountd/internal/models"
)

// validate checks request payloads against their struct tags.
var validate = validator.New()

// AccountService defines the account operations required by the HTTP handlers.
type AccountService interface {
	// Register creates a new account from a username/email/password triple.
	Register(ctx context.Context, username, email, rawPassword string) (models.User, error)
	// Authenticate verifies a username/password pair.
	Authenticate(ctx context.Context, username, rawPassword string) (models.User, error)
	// Rename changes the account's login name.
	Rename(ctx context.Context, userID, username string) error
}

// SessionService defines the session operations required by the HTTP handlers.
type SessionService interface {
	// Login issues a session for the user.
	Login(ctx context.Context, user models.User, rememberMe bool) (models.Session, error)
	// Logout invalidates the session token; idempotent.
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	// Accounts performs the underlying account operations.
	Accounts AccountService
	// Sessions issues and invalidates login sessions.
	Sessions SessionService
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// Register handles POST /register. A duplicate username or email comes back
// as 409 with the offending field named, so forms can attach the error to
// the right input.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, models.ErrDuplicateUsername):
		writeJSON(w, http.StatusConflict, map[string]string{"field": "username", "error": err.Error()})
		return
	case errors.Is(err, models.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, map[string]string{"field": "email", "error": err.Error()})
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login handles POST /login. Unknown username and wrong password produce the
// same generic 401. On success a session cookie is set and the response
// carries the redirect target: the "next" query parameter when it is a safe
// relative path, the landing page otherwise.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserFromContext(r.Context()); ok {
		// Already logged in.
		writeJSON(w, http.StatusOK, map[string]string{"redirect": middleware.DefaultLanding})
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Accounts.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	session, err := h.Sessions.Login(r.Context(), user, req.RememberMe)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"redirect": middleware.ResolveNext(r.URL.Query().Get("next")),
	})
}

// Logout handles POST /logout. It invalidates the session and clears the
// cookie. Logging out without a session, or twice in a row, still succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		token = cookie.Value
	}

	if err := h.Sessions.Logout(r.Context(), token); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
