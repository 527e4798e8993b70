package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/omarsldn/taskhub/internal/api/shared"
	"github.com/omarsldn/taskhub/internal/platform/logger"
	"github.com/omarsldn/taskhub/internal/service/auth"
	"github.com/omarsldn/taskhub/internal/store"
)

// AuthMiddleware authenticates requests carrying a bearer session token.
//
// A token is accepted only when both checks pass: the signature and time
// claims verify, and the exact token string is still present in the user's
// stored token collection. The second check is what makes logout an
// immediate revocation.
type AuthMiddleware struct {
	tokenService auth.TokenService
	tokenStore   store.TokenStore
	userStore    store.UserStore
}

// NewAuthMiddleware creates an AuthMiddleware with the given dependencies.
func NewAuthMiddleware(
	tokenService auth.TokenService,
	tokenStore store.TokenStore,
	userStore store.UserStore,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		tokenStore:   tokenStore,
		userStore:    userStore,
	}
}

// Authenticate validates the Authorization header and loads the
// authenticated user into the request context. All failure modes respond
// 401 with the same message.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		token, err := bearerToken(r)
		if err != nil {
			shared.RespondWithError(w, http.StatusUnauthorized, "Please authenticate")
			return
		}

		claims, err := m.tokenService.Validate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrExpiredToken) {
				log.Error("token validation failed", slog.String("error", err.Error()))
			}
			shared.RespondWithError(w, http.StatusUnauthorized, "Please authenticate")
			return
		}

		exists, err := m.tokenStore.Exists(r.Context(), claims.UserID, token)
		if err != nil {
			log.Error("token lookup failed", slog.String("error", err.Error()))
			shared.RespondWithError(w, http.StatusUnauthorized, "Please authenticate")
			return
		}
		if !exists {
			shared.RespondWithError(w, http.StatusUnauthorized, "Please authenticate")
			return
		}

		user, err := m.userStore.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, store.ErrUserNotFound) {
				log.Error("user lookup failed", slog.String("error", err.Error()))
			}
			shared.RespondWithError(w, http.StatusUnauthorized, "Please authenticate")
			return
		}

		ctx := shared.WithUser(r.Context(), user, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from a "Bearer <token>" Authorization
// header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", auth.ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
