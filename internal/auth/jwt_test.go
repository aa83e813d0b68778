package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	const secret = "test-secret"

	t.Run("round trip", func(t *testing.T) {
		token, err := GenerateToken(42, secret, time.Hour)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := ParseToken(token, secret)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, jwtIssuer, claims.Issuer)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		token, err := GenerateToken(42, secret, time.Hour)
		require.NoError(t, err)

		_, err = ParseToken(token, "other-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, err := GenerateToken(42, secret, -time.Minute)
		require.NoError(t, err)

		_, err = ParseToken(token, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := ParseToken("not.a.token", secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
