package auth

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	user := domain.User{ID: "0b8d7c2e-7d43-4a3e-9d1a-2f1b7bbf3c11", Email: "alice@example.com", FirstName: "Alice"}

	t.Run("should verify a freshly generated token", func(t *testing.T) {
		req := require.New(t)
		manager, err := NewTokenManager("secret", time.Hour)
		req.NoError(err)

		token, expiresAt, err := manager.Generate(user)
		req.NoError(err)
		req.True(expiresAt.After(time.Now()))

		claims, err := manager.Verify(token)
		req.NoError(err)
		req.Equal(user.ID, claims.UserID)
		req.Equal("Alice", claims.FirstName)
	})

	t.Run("should fail when token is missing", func(t *testing.T) {
		req := require.New(t)
		manager, _ := NewTokenManager("secret", time.Hour)

		_, err := manager.Verify("")
		req.ErrorIs(err, errors.ErrMissingToken)
	})

	t.Run("should fail with malformed token", func(t *testing.T) {
		req := require.New(t)
		manager, _ := NewTokenManager("secret", time.Hour)

		_, err := manager.Verify("invalid-token-string")
		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("should fail with a token signed by another secret", func(t *testing.T) {
		req := require.New(t)
		other, _ := NewTokenManager("another-secret", time.Hour)
		manager, _ := NewTokenManager("secret", time.Hour)

		token, _, err := other.Generate(user)
		req.NoError(err)

		_, err = manager.Verify(token)
		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("should fail when the token expired", func(t *testing.T) {
		req := require.New(t)
		issuedAt := time.Now().Add(-2 * time.Hour)
		manager, _ := NewTokenManager("secret", time.Hour)

		// Given a token issued two hours ago for one hour
		token, _, err := manager.WithClock(func() time.Time { return issuedAt }).Generate(user)
		req.NoError(err)

		// When verified now
		_, err = manager.WithClock(time.Now).Verify(token)

		// Then
		req.ErrorIs(err, errors.ErrExpiredToken)
	})

	t.Run("should reject an unsigned token", func(t *testing.T) {
		req := require.New(t)
		manager, _ := NewTokenManager("secret", time.Hour)
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &CustomClaims{
			UserID: user.ID,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		req.NoError(err)

		_, err = manager.Verify(unsigned)
		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("should refuse an empty secret", func(t *testing.T) {
		_, err := NewTokenManager("", time.Hour)
		require.Error(t, err)
	})
}
