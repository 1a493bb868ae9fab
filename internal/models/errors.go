package models

import "errors"

// Typed failures surfaced by the account core. Callers decide the
// user-facing presentation; handlers must keep InvalidCredentials and
// TokenInvalid generic so they cannot be used as oracles.
var (
	// ErrDuplicateUsername is returned when the requested username is taken.
	ErrDuplicateUsername = errors.New("username already in use")
	// ErrDuplicateEmail is returned when the requested email is taken.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers both unknown-user and wrong-password
	// login failures. The two cases are never distinguished.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrTokenInvalid covers every password-reset token failure: bad
	// signature, expiry, wrong purpose, already consumed, unknown subject.
	ErrTokenInvalid = errors.New("password reset token is invalid")
	// ErrSessionExpired is returned when a session handle is absent,
	// unknown, or past its expiry.
	ErrSessionExpired = errors.New("session expired")
)
