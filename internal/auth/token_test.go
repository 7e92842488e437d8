package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neighborhood-library/api-service/internal/entities"
)

const testSecret = "test-secret-key"

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := IssueToken(42, entities.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, entities.RoleAdmin, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestIssueTokenWithoutSecret(t *testing.T) {
	_, err := IssueToken(1, entities.RoleMember, "", time.Hour)
	assert.Error(t, err)
}

func TestVerifyTokenRejections(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token, err := IssueToken(1, entities.RoleMember, testSecret, time.Hour)
		require.NoError(t, err)

		_, err = VerifyToken(token, "different-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := IssueToken(1, entities.RoleMember, testSecret, -time.Minute)
		require.NoError(t, err)

		_, err = VerifyToken(token, testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := VerifyToken("not.a.token", testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		// alg=none token with an empty signature
		_, err := VerifyToken("eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJ1c2VyX2lkIjoxfQ.", testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
