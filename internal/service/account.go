package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ykarataev/accountd/internal/models"
)

// UserRepository defines the persistence operations required by the account
// services.
type UserRepository interface {
	// CreateUser inserts a new user with an already-hashed password.
	// Duplicate username or email must surface as the corresponding
	// models sentinel error.
	CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error)
	// FindByUsername returns the user with the given login name.
	FindByUsername(ctx context.Context, username string) (models.User, error)
	// FindByEmail returns the user with the given email address.
	FindByEmail(ctx context.Context, email string) (models.User, error)
	// FindByID returns the user with the given identifier.
	FindByID(ctx context.Context, id string) (models.User, error)
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	// UpdateUsername changes the user's login name.
	UpdateUsername(ctx context.Context, userID, username string) error
	// TouchLastSeen refreshes the last-seen timestamp.
	TouchLastSeen(ctx context.Context, userID string, t time.Time) error
}

// AccountService implements registration and credential verification.
type AccountService struct {
	repo   UserRepository
	hasher *PasswordHasher
}

// NewAccountService constructs an AccountService using the provided
// repository and password hasher.
func NewAccountService(repo UserRepository, hasher *PasswordHasher) *AccountService {
	return &AccountService{repo: repo, hasher: hasher}
}

// Register creates a new account. The raw password is hashed before it
// reaches the repository. Duplicate username/email come back as
// models.ErrDuplicateUsername / models.ErrDuplicateEmail.
func (s *AccountService) Register(ctx context.Context, username, email, rawPassword string) (models.User, error) {
	passwordHash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return models.User{}, err
	}
	return s.repo.CreateUser(ctx, username, email, passwordHash)
}

// Authenticate verifies a username/password pair and returns the matching
// user. Unknown username and wrong password both collapse into
// models.ErrInvalidCredentials; the hash verification runs even for unknown
// users so the two cases are not distinguishable by timing.
func (s *AccountService) Authenticate(ctx context.Context, username, rawPassword string) (models.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, models.ErrUserNotFound) {
		// Burn a comparable amount of work against a throwaway hash.
		s.hasher.Verify(decoyHash, rawPassword)
		return models.User{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	if !s.hasher.Verify(user.PasswordHash, rawPassword) {
		return models.User{}, models.ErrInvalidCredentials
	}
	return user, nil
}

// SetPassword hashes rawPassword and persists it for the given user.
func (s *AccountService) SetPassword(ctx context.Context, userID, rawPassword string) error {
	passwordHash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// Rename changes the user's login name, surfacing a collision as
// models.ErrDuplicateUsername.
func (s *AccountService) Rename(ctx context.Context, userID, username string) error {
	return s.repo.UpdateUsername(ctx, userID, username)
}

// GetByID returns the user with the given identifier.
func (s *AccountService) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.repo.FindByID(ctx, id)
}

// decoyHash is a valid argon2id encoding of a random value, used to keep
// Authenticate's running time similar for unknown users.
var decoyHash = mustDecoyHash()

func mustDecoyHash() string {
	h, err := NewPasswordHasher().Hash("decoy")
	if err != nil {
		panic(fmt.Sprintf("decoy hash: %v", err))
	}
	return h
}
