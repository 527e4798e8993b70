package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarsldn/taskhub/internal/api/shared"
	"github.com/omarsldn/taskhub/internal/domain"
	"github.com/omarsldn/taskhub/internal/service/auth"
	"github.com/omarsldn/taskhub/internal/store"
)

// stubTokenService validates a single known token.
type stubTokenService struct {
	validToken string
	userID     uuid.UUID
	err        error
}

func (s *stubTokenService) Generate(_ context.Context, _ uuid.UUID) (string, error) {
	return s.validToken, nil
}

func (s *stubTokenService) Validate(_ context.Context, tokenString string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if tokenString != s.validToken {
		return nil, auth.ErrInvalidToken
	}
	now := time.Now().UTC()
	return &auth.Claims{
		UserID:    s.userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		ID:        uuid.NewString(),
	}, nil
}

// stubTokenStore reports membership from a fixed set.
type stubTokenStore struct {
	stored map[string]bool
	err    error
}

func (s *stubTokenStore) Add(_ context.Context, _ uuid.UUID, token string) error {
	s.stored[token] = true
	return nil
}

func (s *stubTokenStore) Exists(_ context.Context, _ uuid.UUID, token string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.stored[token], nil
}

func (s *stubTokenStore) Remove(_ context.Context, _ uuid.UUID, token string) error {
	delete(s.stored, token)
	return nil
}

func (s *stubTokenStore) RemoveAll(_ context.Context, _ uuid.UUID) error {
	s.stored = make(map[string]bool)
	return nil
}

func (s *stubTokenStore) WithTx(_ *sql.Tx) store.TokenStore { return s }

// stubUserStore serves a single user by ID.
type stubUserStore struct {
	user *domain.User
}

func (s *stubUserStore) Create(_ context.Context, _ *domain.User) error { return nil }

func (s *stubUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, store.ErrUserNotFound
}

func (s *stubUserStore) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}

func (s *stubUserStore) Update(_ context.Context, _ *domain.User) error { return nil }

func (s *stubUserStore) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (s *stubUserStore) UpdateAvatar(_ context.Context, _ uuid.UUID, _ []byte) error { return nil }

func (s *stubUserStore) GetAvatar(_ context.Context, _ uuid.UUID) ([]byte, error) {
	return nil, store.ErrAvatarNotFound
}

func (s *stubUserStore) WithTx(_ *sql.Tx) store.UserStore { return s }

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	user := &domain.User{ID: userID, Name: "Alice", Email: "alice@example.com"}
	const validToken = "valid-session-token"

	newMiddleware := func(tokenErr, storeErr error, tokenStored bool, knownUser *domain.User) *AuthMiddleware {
		stored := map[string]bool{}
		if tokenStored {
			stored[validToken] = true
		}
		return NewAuthMiddleware(
			&stubTokenService{validToken: validToken, userID: userID, err: tokenErr},
			&stubTokenStore{stored: stored, err: storeErr},
			&stubUserStore{user: knownUser},
		)
	}

	t.Run("loads the user and token into the context", func(t *testing.T) {
		m := newMiddleware(nil, nil, true, user)

		var gotUser *domain.User
		var gotToken string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, _ = shared.UserFromContext(r.Context())
			gotToken, _ = shared.TokenFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+validToken)
		rec := httptest.NewRecorder()
		m.Authenticate(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotUser)
		assert.Equal(t, userID, gotUser.ID)
		assert.Equal(t, validToken, gotToken)
	})

	t.Run("rejects requests with auth failures", func(t *testing.T) {
		tests := []struct {
			name       string
			middleware *AuthMiddleware
			header     string
		}{
			{"missing header", newMiddleware(nil, nil, true, user), ""},
			{"malformed header", newMiddleware(nil, nil, true, user), "Token " + validToken},
			{"bare bearer", newMiddleware(nil, nil, true, user), "Bearer"},
			{"invalid token", newMiddleware(nil, nil, true, user), "Bearer some-other-token"},
			{"expired token", newMiddleware(auth.ErrExpiredToken, nil, true, user), "Bearer " + validToken},
			{"revoked token", newMiddleware(nil, nil, false, user), "Bearer " + validToken},
			{"deleted user", newMiddleware(nil, nil, true, nil), "Bearer " + validToken},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				nextCalled := false
				next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					nextCalled = true
				})

				req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
				if tc.header != "" {
					req.Header.Set("Authorization", tc.header)
				}
				rec := httptest.NewRecorder()
				tc.middleware.Authenticate(next).ServeHTTP(rec, req)

				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.Contains(t, rec.Body.String(), "Please authenticate")
				assert.False(t, nextCalled)
			})
		}
	})
}
