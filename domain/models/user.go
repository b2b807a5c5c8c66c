package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid"`
	Username  string    `gorm:"size:100;uniqueIndex;not null"`
	FirstName string    `gorm:"size:30;not null"`
	LastName  *string   `gorm:"size:100"`
	Password  string    `gorm:"size:150;not null"` // bcrypt hash
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

// Actor is the identity resolved from a request credential.
type Actor struct {
	UserID   uuid.UUID
	Username string
}
