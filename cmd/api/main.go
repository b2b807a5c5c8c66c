package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"taskmanager-api/interfaces/api/handlers"
	"taskmanager-api/interfaces/api/routes"
	"taskmanager-api/pkg/di"
	"taskmanager-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	container := di.NewContainer()

	// Logger is initialized inside the container, so plain panic until then.
	if err := container.Initialize(); err != nil {
		panic("Failed to initialize container: " + err.Error())
	}

	cfg := container.GetConfig()
	h := handlers.NewHandlers(container.GetHandlerServices())
	app := routes.NewApp(h, routes.AppOptions{
		Name:         cfg.App.Name,
		AllowOrigins: cfg.CORS.AllowOrigins,
		RateLimiter:  container.RateLimiter,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	drained := shutdownOnSignal(app, quit)

	logger.Info("Server starting",
		"port", cfg.App.Port,
		"env", cfg.App.Env,
		"app", cfg.App.Name,
		"db_driver", cfg.Database.Driver,
	)
	logger.Info("Endpoints available",
		"health", "http://localhost:"+cfg.App.Port+"/health",
		"tasks", "http://localhost:"+cfg.App.Port+"/api/tasks/",
	)

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logger.Error("Server failed to start", "error", err)
		cleanup(container)
		os.Exit(1)
	}

	// Listen คืนค่าทันทีที่ปิด listener ต้องรอ request ที่ค้างอยู่ให้จบก่อนปิด DB
	<-drained
	cleanup(container)
	logger.Info("Shutdown complete")
}

// shutdownOnSignal stops app when quit fires. The returned channel closes once
// in-flight requests have drained or the timeout has passed.
func shutdownOnSignal(app *fiber.App, quit <-chan os.Signal) <-chan struct{} {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-quit
		logger.Info("Gracefully shutting down...")

		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Error shutting down server", "error", err)
		}
	}()
	return drained
}

func cleanup(container *di.Container) {
	if err := container.Cleanup(); err != nil {
		logger.Error("Error during cleanup", "error", err)
	}
}
