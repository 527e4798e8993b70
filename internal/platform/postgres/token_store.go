package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/omarsldn/taskhub/internal/platform/logger"
	"github.com/omarsldn/taskhub/internal/store"
)

// TokenStore implements the store.TokenStore interface using a PostgreSQL
// database as the storage backend. Rows in user_tokens are the revocation
// list: a signed token that is absent here is refused regardless of its
// signature.
type TokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTokenStore creates a new PostgreSQL implementation of the TokenStore
// interface.
func NewTokenStore(db store.DBTX, logger *slog.Logger) *TokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "token_store")),
	}
}

// Ensure TokenStore implements store.TokenStore interface
var _ store.TokenStore = (*TokenStore)(nil)

// Add implements store.TokenStore.Add.
func (s *TokenStore) Add(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO user_tokens (id, user_id, token, issued_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, uuid.New(), userID, token, time.Now().UTC())
	if err != nil {
		log.Error("failed to store session token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return err
	}
	return nil
}

// Exists implements store.TokenStore.Exists.
func (s *TokenStore) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM user_tokens WHERE user_id = $1 AND token = $2)`
	if err := s.db.QueryRowContext(ctx, query, userID, token).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Remove implements store.TokenStore.Remove.
func (s *TokenStore) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	query := `DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`
	result, err := s.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, store.ErrTokenNotFound)
}

// RemoveAll implements store.TokenStore.RemoveAll. Removing zero tokens is
// not an error; the end state is the same.
func (s *TokenStore) RemoveAll(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID)
	if err != nil {
		log.Error("failed to revoke all session tokens",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return err
	}
	return nil
}

// WithTx implements store.TokenStore.WithTx.
func (s *TokenStore) WithTx(tx *sql.Tx) store.TokenStore {
	return &TokenStore{db: tx, logger: s.logger}
}
