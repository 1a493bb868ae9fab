// Package repository provides persistence implementations for the account
// services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ykarataev/accountd/internal/models"
)

// pq error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgresUserRepository implements user persistence against a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given
// database connection. db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts a new user record with the given username, email and
// already-hashed password. Uniqueness of username and email is enforced by
// the database constraints, so two concurrent registrations with the same
// value cannot both succeed. Constraint violations are translated to
// models.ErrDuplicateUsername / models.ErrDuplicateEmail.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		LastSeen:     time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, last_seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.LastSeen, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			switch pqErr.Constraint {
			case "users_username_key":
				return models.User{}, models.ErrDuplicateUsername
			case "users_email_key":
				return models.User{}, models.ErrDuplicateEmail
			}
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// FindByUsername retrieves a user by login name.
// Returns models.ErrUserNotFound if no such user exists.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, `
		SELECT id, username, email, password_hash, last_seen, created_at
		FROM users WHERE username = $1
	`, username)
}

// FindByEmail retrieves a user by email address.
// Returns models.ErrUserNotFound if no such user exists.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, `
		SELECT id, username, email, password_hash, last_seen, created_at
		FROM users WHERE email = $1
	`, email)
}

// FindByID retrieves a user by its identifier.
// Returns models.ErrUserNotFound if no such user exists.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `
		SELECT id, username, email, password_hash, last_seen, created_at
		FROM users WHERE id = $1
	`, id)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, arg string) (models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.LastSeen, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash for the given user.
// Returns models.ErrUserNotFound if the user does not exist.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// UpdateUsername changes the user's login name. The unique constraint makes
// the rename atomic with respect to concurrent registrations; a collision is
// reported as models.ErrDuplicateUsername.
func (r *PostgresUserRepository) UpdateUsername(ctx context.Context, userID, username string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET username = $2 WHERE id = $1
	`, userID, username)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.ErrDuplicateUsername
		}
		return fmt.Errorf("update username: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// TouchLastSeen refreshes the user's last-seen timestamp. Concurrent writes
// for the same user are last-write-wins.
func (r *PostgresUserRepository) TouchLastSeen(ctx context.Context, userID string, t time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET last_seen = $2 WHERE id = $1
	`, userID, t)
	if err != nil {
		return fmt.Errorf("touch last seen: %w", err)
	}
	return nil
}
