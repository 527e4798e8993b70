package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/omarsldn/taskhub/internal/domain"
)

// Task sort fields accepted by TaskListOptions. These name the JSON-level
// fields; implementations map them to storage columns.
const (
	TaskSortDescription = "description"
	TaskSortCompleted   = "completed"
	TaskSortCreatedAt   = "created_at"
	TaskSortUpdatedAt   = "updated_at"
)

// ValidTaskSortField reports whether the field can be used to order a task
// listing.
func ValidTaskSortField(field string) bool {
	switch field {
	case TaskSortDescription, TaskSortCompleted, TaskSortCreatedAt, TaskSortUpdatedAt:
		return true
	}
	return false
}

// TaskListOptions controls filtering, ordering and pagination of a task
// listing. The zero value lists every task in insertion order.
type TaskListOptions struct {
	// Completed filters on the completed flag when non-nil.
	Completed *bool

	// SortField orders results by one of the TaskSort* fields.
	// Empty means insertion order (created_at ascending).
	SortField string

	// SortDesc reverses the ordering when true.
	SortDesc bool

	// Limit caps the number of results when positive.
	Limit int

	// Skip discards that many results from the front when positive.
	Skip int
}

// TaskStore defines the interface for task data persistence. Every read and
// write is scoped to an owner: a task is never visible outside the user that
// created it.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID, scoped to the owner.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks matching the given options, in the
	// requested order. The result may be empty.
	List(ctx context.Context, ownerID uuid.UUID, opts TaskListOptions) ([]*domain.Task, error)

	// Update modifies an existing task's description and completed flag,
	// scoped to the owner.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID, scoped to the owner, and returns the
	// deleted task.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	Delete(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// DeleteByOwner removes every task owned by the user and returns the
	// number of tasks deleted. Deleting zero tasks is not an error.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// WithTx returns a TaskStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
