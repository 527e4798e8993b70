package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/omarsldn/taskhub/internal/domain"
	"github.com/omarsldn/taskhub/internal/platform/logger"
	"github.com/omarsldn/taskhub/internal/store"
)

// OutboxStore implements the store.OutboxStore interface using a PostgreSQL
// database as the storage backend.
type OutboxStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewOutboxStore creates a new PostgreSQL implementation of the OutboxStore
// interface.
func NewOutboxStore(db store.DBTX, logger *slog.Logger) *OutboxStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OutboxStore{
		db:     db,
		logger: logger.With(slog.String("component", "outbox_store")),
	}
}

// Ensure OutboxStore implements store.OutboxStore interface
var _ store.OutboxStore = (*OutboxStore)(nil)

// Enqueue implements store.OutboxStore.Enqueue.
func (s *OutboxStore) Enqueue(ctx context.Context, email *domain.OutboxEmail) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO email_outbox (id, recipient, recipient_name, kind, status, attempts, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		email.ID,
		email.Recipient,
		email.RecipientName,
		email.Kind,
		email.Status,
		email.Attempts,
		email.LastError,
		email.CreatedAt,
	)
	if err != nil {
		log.Error("failed to enqueue outbox email",
			slog.String("error", err.Error()),
			slog.String("kind", string(email.Kind)))
		return err
	}

	log.Debug("outbox email enqueued",
		slog.String("outbox_id", email.ID.String()),
		slog.String("kind", string(email.Kind)))
	return nil
}

// ListPending implements store.OutboxStore.ListPending.
func (s *OutboxStore) ListPending(ctx context.Context, limit int) ([]*domain.OutboxEmail, error) {
	query := `
		SELECT id, recipient, recipient_name, kind, status, attempts, last_error, created_at, sent_at
		FROM email_outbox
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	emails := make([]*domain.OutboxEmail, 0)
	for rows.Next() {
		var email domain.OutboxEmail
		var sentAt sql.NullTime
		if err := rows.Scan(
			&email.ID,
			&email.Recipient,
			&email.RecipientName,
			&email.Kind,
			&email.Status,
			&email.Attempts,
			&email.LastError,
			&email.CreatedAt,
			&sentAt,
		); err != nil {
			return nil, err
		}
		if sentAt.Valid {
			t := sentAt.Time
			email.SentAt = &t
		}
		emails = append(emails, &email)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return emails, nil
}

// MarkSent implements store.OutboxStore.MarkSent.
func (s *OutboxStore) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `UPDATE email_outbox SET status = 'sent', sent_at = $2 WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id, sentAt)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, store.ErrNotFound)
}

// RecordAttempt implements store.OutboxStore.RecordAttempt.
func (s *OutboxStore) RecordAttempt(
	ctx context.Context,
	id uuid.UUID,
	deliveryErr string,
) (int, error) {
	query := `
		UPDATE email_outbox
		SET attempts = attempts + 1, last_error = $2
		WHERE id = $1
		RETURNING attempts
	`
	var attempts int
	if err := s.db.QueryRowContext(ctx, query, id, deliveryErr).Scan(&attempts); err != nil {
		return 0, mapNotFound(err, store.ErrNotFound)
	}
	return attempts, nil
}

// MarkFailed implements store.OutboxStore.MarkFailed.
func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx, `UPDATE email_outbox SET status = 'failed' WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(result, store.ErrNotFound); err != nil {
		return err
	}

	log.Warn("outbox email marked failed", slog.String("outbox_id", id.String()))
	return nil
}

// WithTx implements store.OutboxStore.WithTx.
func (s *OutboxStore) WithTx(tx *sql.Tx) store.OutboxStore {
	return &OutboxStore{db: tx, logger: s.logger}
}
