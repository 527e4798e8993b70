package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/omarsldn/taskhub/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// hashed password.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID. The avatar blob is not
	// loaded; use GetAvatar for that.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user's name, age, email and hashed
	// password. The caller must provide a complete user including
	// HashedPassword.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their ID. Dependent rows
	// (tasks, tokens) cascade at the schema level; callers that need the
	// cascade observable should delete them explicitly in the same
	// transaction.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateAvatar stores the normalized avatar bytes for the user.
	// A nil avatar clears the stored blob.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatar []byte) error

	// GetAvatar returns the stored avatar bytes for the user.
	// Returns ErrUserNotFound if the user does not exist and
	// ErrAvatarNotFound if the user has no stored avatar.
	GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error)

	// WithTx returns a UserStore bound to the provided transaction, so
	// multiple operations can execute atomically.
	WithTx(tx *sql.Tx) UserStore
}
