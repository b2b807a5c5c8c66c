package routes

import (
	"github.com/gofiber/fiber/v2"
	"taskmanager-api/interfaces/api/handlers"
	"taskmanager-api/interfaces/api/middleware"
)

func SetupTaskRoutes(api fiber.Router, h *handlers.Handlers) {
	tasks := api.Group("/tasks")
	tasks.Use(middleware.Protected(h.UserService))
	tasks.Get("/", h.TaskHandler.ListTasks)
	tasks.Post("/", h.TaskHandler.CreateTask)
	// Registered before /:id so "my" is not taken for an id.
	tasks.Get("/my", h.TaskHandler.ListMyTasks)
	tasks.Get("/:id", h.TaskHandler.GetTask)
	tasks.Put("/:id", h.TaskHandler.UpdateTask)
	tasks.Patch("/:id", h.TaskHandler.PatchTask)
	tasks.Delete("/:id", h.TaskHandler.DeleteTask)
	tasks.Patch("/:id/completed", h.TaskHandler.CompleteTask)
}
