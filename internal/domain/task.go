package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a single to-do item. Every task belongs to exactly one user; all
// reads and writes are scoped to that owner.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     uuid.UUID `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a Task bound to the given owner. The description is
// trimmed before validation.
func NewTask(description string, ownerID uuid.UUID) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Description: strings.TrimSpace(description),
		Completed:   false,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Normalize applies the canonical form to user-supplied fields.
func (t *Task) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
}

// Validate checks all task fields and returns a ValidationError listing
// every failing field, or nil when the task is valid.
func (t *Task) Validate() error {
	var fields []FieldError

	if t.ID == uuid.Nil {
		fields = append(fields, FieldError{Field: "id", Message: "is required"})
	}
	if t.Description == "" {
		fields = append(fields, FieldError{Field: "description", Message: "is required"})
	}
	if t.OwnerID == uuid.Nil {
		fields = append(fields, FieldError{Field: "owner", Message: "is required"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
