package ports

import (
	"context"
	"time"
)

type TaskEventType string

const (
	TaskEventCreated   TaskEventType = "created"
	TaskEventUpdated   TaskEventType = "updated"
	TaskEventCompleted TaskEventType = "completed"
	TaskEventDeleted   TaskEventType = "deleted"
)

// TaskEvent - plain struct, no broker dependency.
type TaskEvent struct {
	Type       TaskEventType `json:"type"`
	TaskID     string        `json:"task_id"`
	OwnerID    string        `json:"owner_id"`
	ActorID    string        `json:"actor_id"`
	Status     string        `json:"status,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// TaskEventPublisherPort announces task lifecycle changes after they commit.
type TaskEventPublisherPort interface {
	Publish(ctx context.Context, event *TaskEvent) error
}
