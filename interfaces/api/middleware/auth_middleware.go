package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"face-attendance/pkg/logger"
	"face-attendance/pkg/utils"
)

// Protected validates the bearer token and stores the user context
func Protected(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization header")
		}

		token := utils.ExtractTokenFromHeader(authHeader)
		if token == "" {
			return utils.UnauthorizedResponse(c, "Invalid authorization header format")
		}

		userCtx, err := utils.ValidateToken(token, jwtSecret)
		if err != nil {
			logger.Warn(logger.CategoryAuth, "token_rejected", "Token validation failed", map[string]interface{}{"path": c.Path(), "error": err.Error()})
			switch {
			case errors.Is(err, utils.ErrExpiredToken):
				return utils.UnauthorizedResponse(c, "Token has expired")
			case errors.Is(err, utils.ErrInvalidToken):
				return utils.UnauthorizedResponse(c, "Invalid token")
			default:
				return utils.UnauthorizedResponse(c, "Token validation failed")
			}
		}

		c.Locals("user", userCtx)
		return c.Next()
	}
}

// RequirePrivilege rejects users whose token lacks the privilege
func RequirePrivilege(privilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := utils.GetUserFromContext(c)
		if err != nil {
			return utils.UnauthorizedResponse(c, "User not authenticated")
		}

		if !user.HasPrivilege(privilege) {
			logger.Warn(logger.CategoryAuth, "forbidden", "Missing privilege", map[string]interface{}{
				"user_id":   user.ID.String(),
				"privilege": privilege,
			})
			return utils.ForbiddenResponse(c, "Insufficient permissions")
		}

		return c.Next()
	}
}

// OptionalWithQueryToken sets the user context when a valid token is sent in
// the header or the token query parameter. Used for WebSocket connections.
func OptionalWithQueryToken(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := utils.ExtractTokenFromHeader(c.Get("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return c.Next()
		}

		userCtx, err := utils.ValidateToken(token, jwtSecret)
		if err != nil {
			return c.Next()
		}

		c.Locals("user", userCtx)
		return c.Next()
	}
}
