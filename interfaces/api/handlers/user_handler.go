package handlers

import (
	"github.com/gofiber/fiber/v2"
	"taskmanager-api/domain/dto"
	"taskmanager-api/domain/services"
	"taskmanager-api/interfaces/api/middleware"
	"taskmanager-api/pkg/logger"
	"taskmanager-api/pkg/utils"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	logger.InfoContext(ctx, "Registration attempt", "username", req.Username)

	user, err := h.userService.Register(ctx, &req)
	if err != nil {
		return respondError(c, err)
	}

	return utils.CreatedResponse(c, dto.UserToUserResponse(user))
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()

	actor := middleware.ActorFromContext(c)
	if actor == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	profile, err := h.userService.GetProfile(ctx, actor.UserID)
	if err != nil {
		logger.WarnContext(ctx, "Profile not found", "user_id", actor.UserID)
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.UserToUserResponse(profile))
}

// DeleteMe removes the caller's account and every task they own.
func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	ctx := c.UserContext()

	actor := middleware.ActorFromContext(c)
	if actor == nil {
		return utils.UnauthorizedResponse(c, "")
	}

	var req dto.DeleteUserRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	if err := h.userService.DeleteAccount(ctx, actor.UserID, &req); err != nil {
		return respondError(c, err)
	}

	return utils.NoContentResponse(c)
}
