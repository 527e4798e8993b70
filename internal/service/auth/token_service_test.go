package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarsldn/taskhub/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		TokenSecret:          "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 60,
	}
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	_, err := NewTokenService(config.AuthConfig{
		TokenSecret:          "too-short",
		TokenLifetimeMinutes: 60,
	})
	assert.Error(t, err)
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	userID := uuid.New()
	token, err := svc.Generate(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestTokenService_Validate_Errors(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.Validate(context.Background(), "")
		assert.True(t, errors.Is(err, ErrMissingToken))
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.Validate(context.Background(), "not.a.jwt")
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other, err := NewTokenService(config.AuthConfig{
			TokenSecret:          "ffffffffffffffffffffffffffffffff",
			TokenLifetimeMinutes: 60,
		})
		require.NoError(t, err)

		token, err := other.Generate(context.Background(), uuid.New())
		require.NoError(t, err)

		_, err = svc.Validate(context.Background(), token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})
}

func TestTokenService_Validate_Expired(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	impl, ok := svc.(*hmacTokenService)
	require.True(t, ok)

	// Issue a token, then move the service clock past the lifetime plus
	// the allowed skew.
	token, err := svc.Generate(context.Background(), uuid.New())
	require.NoError(t, err)

	impl.timeFunc = func() time.Time {
		return time.Now().Add(time.Hour + impl.clockSkew + time.Minute)
	}

	_, err = svc.Validate(context.Background(), token)
	assert.True(t, errors.Is(err, ErrExpiredToken))
}
