package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ykarataev/accountd/internal/models"
)

// ResetService defines the password reset operations required by the HTTP handlers.
type ResetService interface {
	// RequestReset starts the forgot-password flow for an email address.
	// It returns nil whether or not the address is registered.
	RequestReset(ctx context.Context, email string) error
	// CompleteReset verifies the token and sets the new password.
	CompleteReset(ctx context.Context, token, newPassword string) error
}

// ResetHandler handles HTTP requests for the password reset flow.
type ResetHandler struct {
	// Resets performs the underlying token and email operations.
	Resets ResetService
}

// ForgotPasswordRequest represents the JSON payload for a reset request.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the JSON payload for completing a reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ForgotPassword handles POST /forgot-password. The response body is the
// same for registered and unknown addresses, so it cannot be used to probe
// which emails have accounts.
func (h *ResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Resets.RequestReset(r.Context(), req.Email); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "check your email for the instructions to reset your password",
	})
}

// ResetPassword handles POST /reset-password. Every token failure, whatever
// the underlying reason, produces the same 400 response.
func (h *ResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.Resets.CompleteReset(r.Context(), req.Token, req.NewPassword)
	if errors.Is(err, models.ErrTokenInvalid) {
		http.Error(w, "password reset link is invalid or has expired", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}
