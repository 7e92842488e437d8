package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		hash, err := HashPassword("correct horse", bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEqual(t, "correct horse", hash)
		assert.NoError(t, CheckPassword("correct horse", hash))
	})

	t.Run("too short", func(t *testing.T) {
		_, err := HashPassword("abc", bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret-password", bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		assert.ErrorIs(t, CheckPassword("wrong-password", hash), ErrInvalidPassword)
	})

	t.Run("garbage hash", func(t *testing.T) {
		assert.Error(t, CheckPassword("secret-password", "not-a-bcrypt-hash"))
	})
}
