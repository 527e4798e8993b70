package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService defines operations for issuing and validating session tokens.
// Validation here covers the cryptographic half only (signature and expiry);
// the authentication middleware additionally checks the token against the
// user's stored token collection so that logout revokes it.
type TokenService interface {
	// Generate creates a signed session token embedding the user's ID and
	// an expiry claim. Returns the token string or an error if signing fails.
	Generate(ctx context.Context, userID uuid.UUID) (string, error)

	// Validate verifies the token's signature and time claims and extracts
	// the claims. Returns ErrExpiredToken or ErrInvalidToken on failure.
	Validate(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated content of a session token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID

	// IssuedAt is when the token was created.
	IssuedAt time.Time

	// ExpiresAt is when the token stops being accepted.
	ExpiresAt time.Time

	// ID is the unique token identifier (jti claim).
	ID string
}
