package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"face-attendance/pkg/config"
	"face-attendance/pkg/utils"
)

// AdminToken guards admin endpoints with the X-Admin-Token header or token
// query parameter. A configured bcrypt hash takes precedence over the plain
// token, and the JWT secret is the last fallback.
func AdminToken(admin config.AdminConfig, jwtSecret string) fiber.Handler {
	plain := admin.Token
	if plain == "" {
		plain = jwtSecret
	}
	hash := []byte(admin.TokenHash)

	return func(c *fiber.Ctx) error {
		token := c.Get("X-Admin-Token")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return utils.UnauthorizedResponse(c, "Missing admin token")
		}

		var ok bool
		if len(hash) > 0 {
			ok = bcrypt.CompareHashAndPassword(hash, []byte(token)) == nil
		} else {
			ok = subtle.ConstantTimeCompare([]byte(token), []byte(plain)) == 1
		}
		if !ok {
			return utils.UnauthorizedResponse(c, "Invalid admin token")
		}

		return c.Next()
	}
}
