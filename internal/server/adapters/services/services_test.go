package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noted/internal/server/adapters/services"
	portservices "noted/internal/server/ports/services"
)

const testSecret = "test-secret-key-for-unit-tests-only"

func TestJWTRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := services.NewJWT(testSecret, 15*time.Minute)

	token, err := svc.GenerateAccessToken(ctx, "user-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.ValidateAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTValidateErrors(t *testing.T) {
	ctx := context.Background()
	svc := services.NewJWT(testSecret, 15*time.Minute)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, portservices.ErrInvalidJWTToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := services.NewJWT(testSecret, -time.Minute)
		token, err := expired.GenerateAccessToken(ctx, "user-1", "alice")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, portservices.ErrExpiredJWTToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := services.NewJWT("a-different-secret-key", 15*time.Minute)
		token, err := other.GenerateAccessToken(ctx, "user-1", "alice")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, portservices.ErrInvalidJWTToken)
	})
}

func TestBcryptService(t *testing.T) {
	ctx := context.Background()
	svc := services.NewBcrypt(4)

	hash, err := svc.Hash(ctx, "s3cret-password")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-password", hash)

	ok, err := svc.Verify(ctx, hash, "s3cret-password")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptInvalidCostFallsBack(t *testing.T) {
	ctx := context.Background()
	svc := services.NewBcrypt(99)

	hash, err := svc.Hash(ctx, "pw")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, hash, "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}
