package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest is the POST /tasks/ payload. user_id in the body is
// ignored; the caller becomes the owner.
type CreateTaskRequest struct {
	Title       OptionalString `json:"title"`
	Description OptionalString `json:"description"`
	Status      OptionalString `json:"status"`
}

// UpdateTaskRequest is shared by full (PUT) and partial (PATCH) updates.
type UpdateTaskRequest struct {
	Title       OptionalString `json:"title"`
	Description OptionalString `json:"description"`
	Status      OptionalString `json:"status"`
}

type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	UserID      uuid.UUID `json:"user_id"`
	Created     time.Time `json:"created"`
}

// TaskListQuery selects a listing view and page.
type TaskListQuery struct {
	Mine     bool
	Status   string
	Page     int
	PageSize int
}

// TaskPage is one page of a listing with navigation to its neighbours.
type TaskPage struct {
	Count        int64
	NextPage     *int
	PreviousPage *int
	Results      []TaskResponse
}

// TaskListResponse is the wire form of TaskPage.
type TaskListResponse struct {
	Count    int64          `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []TaskResponse `json:"results"`
}
