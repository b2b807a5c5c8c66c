package handlers

import (
	"github.com/gofiber/fiber/v2"
	"taskmanager-api/domain/dto"
	"taskmanager-api/domain/services"
	"taskmanager-api/pkg/logger"
	"taskmanager-api/pkg/utils"
)

// AuthHandler issues, refreshes and verifies JWTs.
type AuthHandler struct {
	userService services.UserService
}

func NewAuthHandler(userService services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}

func (h *AuthHandler) CreateToken(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.TokenCreateRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	pair, err := h.userService.IssueTokens(ctx, &req)
	if err != nil {
		logger.WarnContext(ctx, "Login failed", "username", req.Username, "reason", err.Error())
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, pair)
}

func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req dto.TokenRefreshRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	access, err := h.userService.RefreshAccessToken(c.UserContext(), req.Refresh)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.TokenRefreshResponse{Access: access})
}

func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	var req dto.TokenVerifyRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	if err := h.userService.VerifyToken(c.UserContext(), req.Token); err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, fiber.Map{})
}

// parseAndValidate decodes the body into req and runs its validate tags. On
// failure it has already written the 400 response and returns false.
func parseAndValidate(c *fiber.Ctx, req any) bool {
	ctx := c.UserContext()

	if err := c.BodyParser(req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		_ = utils.BadRequestResponse(c, "Invalid request body")
		return false
	}

	if err := utils.ValidateStruct(req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		_ = utils.ValidationErrorResponse(c, errors)
		return false
	}
	return true
}
