package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"taskmanager-api/domain/models"
	"taskmanager-api/domain/ports"
)

const taskKeyPrefix = "task:"

// cachedTask is the stored shape; the owner relation is never cached.
type cachedTask struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      models.TaskStatus `json:"status"`
	UserID      uuid.UUID         `json:"user_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type TaskCache struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewTaskCache stores tasks under "<prefix>task:<id>" for ttl.
func NewTaskCache(client *Client, prefix string, ttl time.Duration) ports.TaskCachePort {
	return &TaskCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *TaskCache) key(id uuid.UUID) string {
	return c.prefix + taskKeyPrefix + id.String()
}

func (c *TaskCache) Get(ctx context.Context, id uuid.UUID) (*models.Task, bool, error) {
	var entry cachedTask
	found, err := c.client.GetJSON(ctx, c.key(id), &entry)
	if err != nil || !found {
		return nil, false, err
	}
	return &models.Task{
		ID:          entry.ID,
		Title:       entry.Title,
		Description: entry.Description,
		Status:      entry.Status,
		UserID:      entry.UserID,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}, true, nil
}

func (c *TaskCache) Set(ctx context.Context, task *models.Task) error {
	return c.client.SetJSON(ctx, c.key(task.ID), cachedTask{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}, c.ttl)
}

func (c *TaskCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, c.key(id))
}

// NoopTaskCache is used when REDIS_URL is not configured; every read misses.
type NoopTaskCache struct{}

func NewNoopTaskCache() ports.TaskCachePort {
	return NoopTaskCache{}
}

func (NoopTaskCache) Get(context.Context, uuid.UUID) (*models.Task, bool, error) {
	return nil, false, nil
}

func (NoopTaskCache) Set(context.Context, *models.Task) error {
	return nil
}

func (NoopTaskCache) Invalidate(context.Context, uuid.UUID) error {
	return nil
}
