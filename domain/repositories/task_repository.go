package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"taskmanager-api/domain/models"
)

var (
	// ErrRecordNotFound is returned by repositories when no row matches.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when an insert hits a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// TaskFilter narrows a task listing. Zero values mean no restriction.
type TaskFilter struct {
	OwnerID        *uuid.UUID
	StatusContains string // case-insensitive substring of status
}

// TaskField names a mutable task column.
type TaskField string

const (
	TaskFieldTitle       TaskField = "title"
	TaskFieldDescription TaskField = "description"
	TaskFieldStatus      TaskField = "status"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	// Update writes the given fields of task in a single statement.
	Update(ctx context.Context, task *models.Task, fields []TaskField) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkCompleted sets status to Completed unless it already is. It reports
	// whether a row changed.
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	// Page returns one newest-first page of tasks matching filter together
	// with the total number of matches, read in one transaction.
	Page(ctx context.Context, filter TaskFilter, offset, limit int) ([]*models.Task, int64, error)
}
