package dto

import (
	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Username  string  `json:"username" validate:"required,min=1,max=100"`
	FirstName string  `json:"first_name" validate:"required,min=1,max=30"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  *string   `json:"last_name"`
}

// DeleteUserRequest confirms account removal with the current password.
type DeleteUserRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
}
