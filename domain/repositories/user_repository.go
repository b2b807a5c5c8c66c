package repositories

import (
	"context"

	"github.com/google/uuid"
	"taskmanager-api/domain/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Delete removes the user together with every task they own and returns
	// the ids of the removed tasks.
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}
