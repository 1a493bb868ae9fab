package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ykarataev/accountd/internal/middleware"
	"github.com/ykarataev/accountd/internal/models"
)

// ProfileHandler handles HTTP requests for the authenticated user's profile.
// Both routes sit behind the RequireAuthenticated gate, so the principal is
// always present in the request context.
type ProfileHandler struct {
	// Accounts performs the underlying account operations.
	Accounts AccountService
}

// ProfileResponse is the JSON shape of the profile page.
type ProfileResponse struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	LastSeen time.Time `json:"last_seen"`
}

// UpdateProfileRequest represents the JSON payload for a profile edit.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
}

// Me handles GET /profile.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Username: user.Username,
		Email:    user.Email,
		LastSeen: user.LastSeen,
	})
}

// Update handles POST /profile. Only the username can be changed; a taken
// name comes back as 409.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Username != user.Username {
		err := h.Accounts.Rename(r.Context(), user.ID, req.Username)
		if errors.Is(err, models.ErrDuplicateUsername) {
			writeJSON(w, http.StatusConflict, map[string]string{"field": "username", "error": err.Error()})
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "username": req.Username})
}
