package services

import (
	"context"

	"github.com/google/uuid"
	"taskmanager-api/domain/dto"
	"taskmanager-api/domain/models"
)

// TaskService is the task lifecycle. Every method takes the resolved actor;
// a nil actor yields apperrors.ErrUnauthenticated.
type TaskService interface {
	CreateTask(ctx context.Context, actor *models.Actor, req *dto.CreateTaskRequest) (*models.Task, error)
	GetTask(ctx context.Context, actor *models.Actor, taskID uuid.UUID) (*models.Task, error)
	UpdateTask(ctx context.Context, actor *models.Actor, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error)
	PatchTask(ctx context.Context, actor *models.Actor, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, actor *models.Actor, taskID uuid.UUID) error
	CompleteTask(ctx context.Context, actor *models.Actor, taskID uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, actor *models.Actor, query dto.TaskListQuery) (*dto.TaskPage, error)
}
