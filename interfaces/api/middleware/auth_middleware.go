package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"taskmanager-api/domain/models"
	"taskmanager-api/domain/services"
	"taskmanager-api/pkg/logger"
	"taskmanager-api/pkg/utils"
)

const actorLocalsKey = "user"

// Protected resolves the bearer access token into the calling actor and
// stores it in c.Locals("user"). Requests without a valid token get 401.
func Protected(userService services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Vary(fiber.HeaderAuthorization)
		ctx := c.UserContext()

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return utils.UnauthorizedResponse(c, "")
		}

		token := utils.ExtractTokenFromHeader(authHeader)
		if token == "" {
			return utils.UnauthorizedResponse(c, "Invalid authorization header format")
		}

		actor, err := userService.ResolveActor(ctx, token)
		if err != nil {
			logger.WarnContext(ctx, "Token validation failed", "error", err)
			switch {
			case errors.Is(err, utils.ErrExpiredToken):
				return utils.UnauthorizedResponse(c, "Token has expired")
			case errors.Is(err, utils.ErrWrongTokenType):
				return utils.UnauthorizedResponse(c, "Token has wrong type")
			default:
				return utils.UnauthorizedResponse(c, "Given token not valid for any token type")
			}
		}

		c.Locals(actorLocalsKey, actor)
		c.SetUserContext(logger.ContextWithUserID(ctx, actor.UserID.String()))

		return c.Next()
	}
}

// ActorFromContext returns the actor set by Protected, or nil.
func ActorFromContext(c *fiber.Ctx) *models.Actor {
	actor, _ := c.Locals(actorLocalsKey).(*models.Actor)
	return actor
}
