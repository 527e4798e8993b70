package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/omarsldn/taskhub/internal/domain"
)

// OutboxStore persists transactional-email outbox entries. Entries are
// enqueued inside the same transaction as the state change that triggered
// them and drained asynchronously by the outbox dispatcher.
type OutboxStore interface {
	// Enqueue inserts a pending outbox entry.
	Enqueue(ctx context.Context, email *domain.OutboxEmail) error

	// ListPending returns up to limit pending entries, oldest first.
	ListPending(ctx context.Context, limit int) ([]*domain.OutboxEmail, error)

	// MarkSent records a successful delivery.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	// RecordAttempt increments the entry's attempt counter, stores the
	// delivery error, and returns the new attempt count.
	RecordAttempt(ctx context.Context, id uuid.UUID, deliveryErr string) (int, error)

	// MarkFailed moves the entry to the failed state once its attempt
	// budget is exhausted.
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// WithTx returns an OutboxStore bound to the provided transaction.
	WithTx(tx *sql.Tx) OutboxStore
}
