package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ykarataev/accountd/internal/models"
)

// ResetTokenTTL bounds the window in which a leaked reset link stays usable.
const ResetTokenTTL = 10 * time.Minute

const resetPurpose = "password-reset"

// MailSender sends a message to an address. Delivery mechanics live behind
// this interface; the reset flow only needs the single call.
type MailSender interface {
	Send(to, subject, bodyText, bodyHTML string) error
}

// ResetTokenRepository is the ledger of consumed reset tokens.
type ResetTokenRepository interface {
	// IsConsumed reports whether the token with this jti was already spent.
	IsConsumed(ctx context.Context, jti string) (bool, error)
	// Consume records the token as spent until expiresAt has passed.
	Consume(ctx context.Context, jti, userID string, expiresAt time.Time) error
}

// resetClaims is the signed payload of a password reset token.
type resetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// ResetService issues and verifies signed, expiring password-reset tokens,
// and drives the forgot-password email flow.
type ResetService struct {
	users   UserRepository
	ledger  ResetTokenRepository
	hasher  *PasswordHasher
	mail    MailSender
	secret  []byte
	baseURL string
	log     *zap.Logger
}

// NewResetService constructs a ResetService. secret is the server-held
// signing key; baseURL is used to build the link embedded in reset emails.
func NewResetService(
	users UserRepository,
	ledger ResetTokenRepository,
	hasher *PasswordHasher,
	mail MailSender,
	secret []byte,
	baseURL string,
	log *zap.Logger,
) *ResetService {
	return &ResetService{
		users:   users,
		ledger:  ledger,
		hasher:  hasher,
		mail:    mail,
		secret:  secret,
		baseURL: baseURL,
		log:     log,
	}
}

// Issue creates a signed token allowing exactly one password reset for the
// user within ResetTokenTTL.
func (s *ResetService) Issue(user models.User) (string, error) {
	now := time.Now()
	claims := resetClaims{
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return token, nil
}

// Verify checks the token's signature, expiry and purpose, rejects already
// consumed tokens, and resolves the subject user. Every token-shaped failure
// collapses into models.ErrTokenInvalid so callers cannot tell which check
// failed; the distinction is only logged. Storage failures propagate as-is.
func (s *ResetService) Verify(ctx context.Context, token string) (models.User, error) {
	user, _, err := s.verify(ctx, token)
	return user, err
}

func (s *ResetService) verify(ctx context.Context, token string) (models.User, *resetClaims, error) {
	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// Signature, structure and expiry failures all land here; the jwt
		// library checks the signature before looking at the payload.
		s.log.Info("reset token rejected", zap.Error(err))
		return models.User{}, nil, models.ErrTokenInvalid
	}

	if claims.Purpose != resetPurpose {
		s.log.Info("reset token rejected: wrong purpose", zap.String("purpose", claims.Purpose))
		return models.User{}, nil, models.ErrTokenInvalid
	}

	consumed, err := s.ledger.IsConsumed(ctx, claims.ID)
	if err != nil {
		return models.User{}, nil, err
	}
	if consumed {
		s.log.Info("reset token rejected: already used", zap.String("jti", claims.ID))
		return models.User{}, nil, models.ErrTokenInvalid
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, models.ErrUserNotFound) {
		s.log.Info("reset token rejected: unknown subject", zap.String("subject", claims.Subject))
		return models.User{}, nil, models.ErrTokenInvalid
	}
	if err != nil {
		return models.User{}, nil, err
	}

	return user, claims, nil
}

// RequestReset handles a forgot-password submission. Whether or not the
// email is registered the caller gets a nil error, so responses cannot be
// used to enumerate accounts. For a known address exactly one email is sent,
// to the address of the user that was looked up. Mail delivery failure is
// logged, never propagated.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		s.log.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := s.Issue(user)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	bodyText := fmt.Sprintf(
		"Hi %s,\n\nTo reset your password visit the following link:\n\n%s\n\n"+
			"The link expires in %s. If you did not request a password reset, ignore this message.\n",
		user.Username, link, ResetTokenTTL,
	)
	bodyHTML := fmt.Sprintf(
		`<p>Hi %s,</p><p>To reset your password click <a href="%s">here</a> or paste the link below into your browser:</p>`+
			`<p>%s</p><p>The link expires in %s. If you did not request a password reset, ignore this message.</p>`,
		user.Username, link, link, ResetTokenTTL,
	)

	if err := s.mail.Send(user.Email, "Reset your password", bodyText, bodyHTML); err != nil {
		s.log.Error("failed to send password reset email", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// CompleteReset verifies the token and sets the new password for its
// subject, then records the token as consumed so it cannot be replayed.
func (s *ResetService) CompleteReset(ctx context.Context, token, newPassword string) error {
	user, claims, err := s.verify(ctx, token)
	if err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	return s.ledger.Consume(ctx, claims.ID, user.ID, claims.ExpiresAt.Time)
}
