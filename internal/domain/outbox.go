package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEmailKind identifies the kind of transactional email to send.
type OutboxEmailKind string

// Supported email kinds.
const (
	EmailKindWelcome      OutboxEmailKind = "welcome"
	EmailKindCancellation OutboxEmailKind = "cancellation"
)

// OutboxEmailStatus tracks the delivery state of an outbox entry.
type OutboxEmailStatus string

// Outbox entry states. Entries move pending -> sent, or pending -> failed
// once the attempt budget is exhausted.
const (
	EmailStatusPending OutboxEmailStatus = "pending"
	EmailStatusSent    OutboxEmailStatus = "sent"
	EmailStatusFailed  OutboxEmailStatus = "failed"
)

// OutboxEmail is a durable record of a transactional email to deliver.
// Entries are enqueued in the same database transaction as the state change
// that triggered them, then picked up by the outbox dispatcher.
type OutboxEmail struct {
	ID            uuid.UUID
	Recipient     string
	RecipientName string
	Kind          OutboxEmailKind
	Status        OutboxEmailStatus
	Attempts      int
	LastError     string
	CreatedAt     time.Time
	SentAt        *time.Time
}

// NewOutboxEmail creates a pending outbox entry for the given recipient.
func NewOutboxEmail(kind OutboxEmailKind, recipient, recipientName string) *OutboxEmail {
	return &OutboxEmail{
		ID:            uuid.New(),
		Recipient:     recipient,
		RecipientName: recipientName,
		Kind:          kind,
		Status:        EmailStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}
