package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// TokenStore persists the per-user collection of issued session tokens.
// A signed token is only honored while it remains in this collection, which
// is what makes logout an effective revocation even before the token's
// expiry claim lapses.
type TokenStore interface {
	// Add appends a newly issued token to the user's collection.
	Add(ctx context.Context, userID uuid.UUID, token string) error

	// Exists reports whether the exact token string is present in the
	// user's collection.
	Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error)

	// Remove revokes a single token, leaving the user's other sessions
	// intact.
	// Returns ErrTokenNotFound if the token is not in the collection.
	Remove(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveAll revokes every token issued to the user.
	RemoveAll(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a TokenStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TokenStore
}
