package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"taskmanager-api/interfaces/api/handlers"
	"taskmanager-api/interfaces/api/middleware"
)

type AppOptions struct {
	Name         string
	AllowOrigins string
	// RateLimiter is optional; nil disables per-IP throttling.
	RateLimiter *middleware.IPRateLimiter
}

// NewApp builds the Fiber app with the middleware chain and every route.
func NewApp(h *handlers.Handlers, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		AppName:               opts.Name,
		BodyLimit:             1 * 1024 * 1024,
		DisableStartupMessage: true,
	})

	// Order matters: request id before logger, logger before everything it measures.
	app.Use(recover.New())
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CorsMiddleware(opts.AllowOrigins))
	if opts.RateLimiter != nil {
		app.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
	}

	SetupRoutes(app, h)
	return app
}
