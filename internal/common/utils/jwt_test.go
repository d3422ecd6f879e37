package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-signing-secret")

	t.Run("round trip", func(t *testing.T) {
		token, err := GenerateToken(secret, "user-1", "alice", "alice@example.com", "admin")
		require.NoError(t, err)

		claims, err := ParseToken(token, secret)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, "cashflow-ledger", claims.Issuer)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		token, err := GenerateToken(secret, "user-1", "alice", "alice@example.com", "user")
		require.NoError(t, err)

		_, err = ParseToken(token, []byte("a-different-secret"))
		assert.Error(t, err)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := ParseToken("not.a.token", secret)
		assert.Error(t, err)
	})
}

func TestExtractBearerToken(t *testing.T) {
	t.Run("valid header", func(t *testing.T) {
		token, err := ExtractBearerToken("Bearer abc123")
		require.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := ExtractBearerToken("")
		assert.Error(t, err)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		_, err := ExtractBearerToken("Basic abc123")
		assert.Error(t, err)
	})
}
