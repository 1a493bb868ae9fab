// Package service provides business-logic services for accounts, sessions
// and password resets, delegating persistence to repository interfaces.
package service

import (
	"fmt"

	"github.com/matthewhartstonge/argon2"
)

// PasswordHasher produces and verifies salted argon2id password hashes.
// Each call to Hash draws a fresh random salt, so hashing the same password
// twice yields two different encoded values that both verify.
type PasswordHasher struct {
	cfg argon2.Config
}

// NewPasswordHasher constructs a PasswordHasher with the library's default
// argon2id parameters.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cfg: argon2.DefaultConfig()}
}

// Hash derives an encoded argon2id hash of the raw password.
func (h *PasswordHasher) Hash(rawPassword string) (string, error) {
	encoded, err := h.cfg.HashEncoded([]byte(rawPassword))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(encoded), nil
}

// Verify reports whether rawPassword matches the encoded hash. The
// comparison is constant-time inside the argon2 library. A malformed
// hash (for example from data corruption) verifies as false, not as an
// error visible to login flows.
func (h *PasswordHasher) Verify(passwordHash, rawPassword string) bool {
	ok, err := argon2.VerifyEncoded([]byte(rawPassword), []byte(passwordHash))
	if err != nil {
		return false
	}
	return ok
}
