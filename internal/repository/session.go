package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ykarataev/accountd/internal/models"
)

// PostgresSessionRepository implements session persistence against a PostgreSQL database.
type PostgresSessionRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository using
// the provided *sql.DB.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{DB: db}
}

// Create stores a new session row.
func (r *PostgresSessionRepository) Create(ctx context.Context, session models.Session) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Get returns the session for the given token.
// Returns models.ErrSessionExpired if no such session exists; expiry itself
// is checked by the caller against the returned ExpiresAt.
func (r *PostgresSessionRepository) Get(ctx context.Context, token string) (models.Session, error) {
	var session models.Session
	err := r.DB.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = $1
	`, token).Scan(&session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, models.ErrSessionExpired
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// Delete removes the session for the given token. Deleting a token that does
// not exist is not an error, which makes logout idempotent.
func (r *PostgresSessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM sessions WHERE token = $1
	`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
