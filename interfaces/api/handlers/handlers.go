package handlers

import (
	"taskmanager-api/domain/services"
)

// Services contains all the services needed for handlers
type Services struct {
	UserService  services.UserService
	TaskService  services.TaskService
	HealthChecks map[string]HealthCheck
}

// Handlers contains all HTTP handlers
type Handlers struct {
	UserHandler   *UserHandler
	TaskHandler   *TaskHandler
	AuthHandler   *AuthHandler
	HealthHandler *HealthHandler

	// UserService backs the Protected middleware.
	UserService services.UserService
}

func NewHandlers(services *Services) *Handlers {
	return &Handlers{
		UserHandler:   NewUserHandler(services.UserService),
		TaskHandler:   NewTaskHandler(services.TaskService),
		AuthHandler:   NewAuthHandler(services.UserService),
		HealthHandler: NewHealthHandler(services.HealthChecks),
		UserService:   services.UserService,
	}
}
