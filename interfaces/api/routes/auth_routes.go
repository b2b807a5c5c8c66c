package routes

import (
	"github.com/gofiber/fiber/v2"
	"taskmanager-api/interfaces/api/handlers"
	"taskmanager-api/interfaces/api/middleware"
)

func SetupAuthRoutes(api fiber.Router, h *handlers.Handlers) {
	auth := api.Group("/auth")

	auth.Post("/users", h.UserHandler.Register)
	auth.Get("/users/me", middleware.Protected(h.UserService), h.UserHandler.GetProfile)
	auth.Delete("/users/me", middleware.Protected(h.UserService), h.UserHandler.DeleteMe)

	jwt := auth.Group("/jwt")
	jwt.Post("/create", h.AuthHandler.CreateToken)
	jwt.Post("/refresh", h.AuthHandler.RefreshToken)
	jwt.Post("/verify", h.AuthHandler.VerifyToken)
}
