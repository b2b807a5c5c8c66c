package routes

import (
	"github.com/gofiber/fiber/v2"
	"taskmanager-api/interfaces/api/handlers"
)

func SetupHealthRoutes(app *fiber.App, h *handlers.Handlers) {
	app.Get("/health", h.HealthHandler.Health)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Task Manager API",
			"docs":    "/api/tasks/",
			"health":  "/health",
		})
	})
}
