package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ykarataev/accountd/internal/models"
)

// Session lifetimes. A plain login lasts a day; remember-me stretches it
// to thirty days.
const (
	SessionTTL  = 24 * time.Hour
	RememberTTL = 30 * 24 * time.Hour
)

const sessionTokenBytes = 32

// SessionRepository defines the persistence operations required by the
// SessionService.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session models.Session) error
	// Get returns the session for the given token, or
	// models.ErrSessionExpired if unknown.
	Get(ctx context.Context, token string) (models.Session, error)
	// Delete removes the session; removing an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

// SessionService issues and validates opaque session handles bound to a
// user id.
type SessionService struct {
	sessions SessionRepository
	users    UserRepository
	log      *zap.Logger
}

// NewSessionService constructs a SessionService with the provided
// repositories and logger.
func NewSessionService(sessions SessionRepository, users UserRepository, log *zap.Logger) *SessionService {
	return &SessionService{sessions: sessions, users: users, log: log}
}

// Login creates a session for the user. The token is 32 bytes from
// crypto/rand, so handles are not guessable or sequential. rememberMe
// selects the long lifetime.
func (s *SessionService) Login(ctx context.Context, user models.User, rememberMe bool) (models.Session, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return models.Session{}, fmt.Errorf("generate session token: %w", err)
	}

	ttl := SessionTTL
	if rememberMe {
		ttl = RememberTTL
	}

	now := time.Now().UTC()
	session := models.Session{
		Token:     base64.RawURLEncoding.EncodeToString(buf),
		UserID:    user.ID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

// CurrentPrincipal resolves the session token to its user. An absent,
// unknown or expired token yields models.ErrSessionExpired. On success the
// user's last-seen timestamp is refreshed best-effort; a failure there is
// logged and does not fail the lookup.
func (s *SessionService) CurrentPrincipal(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, models.ErrSessionExpired
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return models.User{}, err
	}
	if time.Now().After(session.ExpiresAt) {
		return models.User{}, models.ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return models.User{}, err
	}

	if err := s.users.TouchLastSeen(ctx, user.ID, time.Now().UTC()); err != nil {
		s.log.Warn("failed to refresh last seen", zap.String("user_id", user.ID), zap.Error(err))
	}

	return user, nil
}

// Logout invalidates the session token. Logging out twice, or with a token
// that never existed, succeeds.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}
