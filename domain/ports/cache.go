package ports

import (
	"context"

	"github.com/google/uuid"
	"taskmanager-api/domain/models"
)

// TaskCachePort - read-through cache for single task lookups.
// A miss is (nil, false, nil); errors are reported so the caller can log them
// and fall back to the store.
type TaskCachePort interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Task, bool, error)
	Set(ctx context.Context, task *models.Task) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}
