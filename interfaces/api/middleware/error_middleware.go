package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"taskmanager-api/pkg/logger"
	"taskmanager-api/pkg/utils"
)

// ErrorHandler renders errors that escape handlers (unknown routes, body
// limits, panics recovered upstream) in the common error envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := utils.ErrCodeInternalError
		message := "Internal server error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
			switch code {
			case fiber.StatusBadRequest:
				errCode = utils.ErrCodeBadRequest
			case fiber.StatusUnauthorized:
				errCode = utils.ErrCodeUnauthorized
			case fiber.StatusForbidden:
				errCode = utils.ErrCodeForbidden
			case fiber.StatusNotFound:
				errCode = utils.ErrCodeNotFound
			case fiber.StatusConflict:
				errCode = utils.ErrCodeConflict
			case fiber.StatusTooManyRequests:
				errCode = utils.ErrCodeTooManyRequests
			default:
				if code < 500 {
					errCode = utils.ErrCodeBadRequest
				}
			}
		}

		if code >= 500 {
			logger.ErrorContext(c.UserContext(), "Unhandled error", "path", c.Path(), "error", err)
		}

		return utils.ErrorResponse(c, code, errCode, message, nil)
	}
}
