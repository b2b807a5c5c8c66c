package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"taskmanager-api/application/serviceimpl"
	"taskmanager-api/domain/apperrors"
	"taskmanager-api/pkg/logger"
	"taskmanager-api/pkg/utils"
)

// respondError maps a service error onto the HTTP error envelope.
func respondError(c *fiber.Ctx, err error) error {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ValidationErrorResponse(c, verr.Fields)
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return utils.UnauthorizedResponse(c, "")
	case errors.Is(err, serviceimpl.ErrInvalidCredentials):
		return utils.UnauthorizedResponse(c, "No active account found with the given credentials")
	case errors.Is(err, apperrors.ErrForbidden):
		return utils.ForbiddenResponse(c, "Forbidden! You are not the owner of this task.")
	case errors.Is(err, apperrors.ErrNotFound):
		if msg := apperrors.Message(err); msg != apperrors.ErrNotFound.Error() {
			return utils.NotFoundResponse(c, msg)
		}
		return utils.NotFoundResponse(c, "")
	case errors.Is(err, apperrors.ErrConflict):
		return utils.ConflictResponse(c, apperrors.Message(err))
	case errors.Is(err, utils.ErrExpiredToken),
		errors.Is(err, utils.ErrInvalidToken),
		errors.Is(err, utils.ErrMissingToken),
		errors.Is(err, utils.ErrWrongTokenType):
		return utils.UnauthorizedResponse(c, "Token is invalid or expired")
	default:
		logger.ErrorContext(c.UserContext(), "Unexpected error", "path", c.Path(), "error", err)
		return utils.InternalServerErrorResponse(c)
	}
}
