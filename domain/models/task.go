package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "New"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// TaskStatuses lists every accepted status in display order.
var TaskStatuses = []TaskStatus{TaskStatusNew, TaskStatusInProgress, TaskStatusCompleted}

func (s TaskStatus) IsValid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `gorm:"primaryKey;type:uuid"`
	Title       string     `gorm:"size:200;not null"`
	Description *string    `gorm:"type:text"`
	Status      TaskStatus `gorm:"size:20;not null;default:'New';index"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	User        *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	UpdatedAt   time.Time
}

func (Task) TableName() string {
	return "tasks"
}

// IsOwnedBy reports whether userID is the owner of record.
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t != nil && t.UserID == userID
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskStatusCompleted
}
