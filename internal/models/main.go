// Package models defines the core data structures for user accounts and sessions.
package models

import "time"

// User represents an application account with login credentials.
type User struct {
	// ID is the unique identifier for the user, assigned at creation.
	ID string
	// Username is the login name chosen by the user. Unique.
	Username string
	// Email is the user's address. Unique; receives password reset mail.
	Email string
	// PasswordHash is the encoded argon2 hash of the user's password.
	// The plaintext is never stored.
	PasswordHash string
	// LastSeen is refreshed on every authenticated request.
	LastSeen time.Time
	// CreatedAt is the account creation timestamp.
	CreatedAt time.Time
}

// Session represents a server-tracked login session. The client holds only
// the opaque Token value in a cookie; the server is the sole authority on
// whether the session is still valid.
type Session struct {
	// Token is the opaque, cryptographically random session handle.
	Token string
	// UserID is the identifier of the user the session belongs to.
	UserID string
	// ExpiresAt indicates when the session stops being accepted.
	ExpiresAt time.Time
	// CreatedAt is the session creation timestamp.
	CreatedAt time.Time
}
