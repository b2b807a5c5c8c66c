package routes

import (
	"github.com/gofiber/fiber/v2"
	"taskmanager-api/interfaces/api/handlers"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers) {
	SetupHealthRoutes(app, h)

	api := app.Group("/api")

	SetupAuthRoutes(api, h)
	SetupTaskRoutes(api, h)
}
