package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateToken(t *testing.T) {
	SetJWTSecret("test-secret")

	t.Run("round trip returns the user id", func(t *testing.T) {
		token, err := IssueToken("64f0c9e2a1b2c3d4e5f60718")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		userID, err := ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "64f0c9e2a1b2c3d4e5f60718", userID)
	})

	t.Run("distinct tokens per issue", func(t *testing.T) {
		a, err := IssueToken("someone")
		require.NoError(t, err)
		b, err := IssueToken("someone")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("empty token rejected", func(t *testing.T) {
		_, err := ValidateToken("")
		assert.Error(t, err)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := ValidateToken("not.a.jwt")
		assert.Error(t, err)
	})

	t.Run("tampered token rejected", func(t *testing.T) {
		token, err := IssueToken("someone")
		require.NoError(t, err)

		_, err = ValidateToken(token[:len(token)-2] + "xx")
		assert.Error(t, err)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		token, err := IssueToken("someone")
		require.NoError(t, err)

		SetJWTSecret("a-different-secret")
		defer SetJWTSecret("test-secret")

		_, err = ValidateToken(token)
		assert.Error(t, err)
	})
}

func TestValidateTokenExpiry(t *testing.T) {
	SetJWTSecret("test-secret")

	expired := Claims{
		UserID: "someone",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "someone",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * TokenDuration)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-TokenDuration)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsUnsignedAlg(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "someone"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}
