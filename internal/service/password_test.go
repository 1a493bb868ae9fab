package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher()

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotContains(t, hash, "secret123")

	require.True(t, h.Verify(hash, "secret123"))
	require.False(t, h.Verify(hash, "secret124"))
	require.False(t, h.Verify(hash, ""))
}

func TestPasswordHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewPasswordHasher()

	first, err := h.Hash("secret123")
	require.NoError(t, err)
	second, err := h.Hash("secret123")
	require.NoError(t, err)

	// Random salt means two hashes of the same input never match,
	// yet both verify against the original password.
	require.NotEqual(t, first, second)
	require.True(t, h.Verify(first, "secret123"))
	require.True(t, h.Verify(second, "secret123"))
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := NewPasswordHasher()

	for _, malformed := range []string{"", "not-a-hash", "$argon2id$v=19$garbage"} {
		require.False(t, h.Verify(malformed, "secret123"), "hash %q should not verify", malformed)
	}
}
