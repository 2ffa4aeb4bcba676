package middleware

import (
	"github.com/adhirath/backend/config"
	"github.com/adhirath/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware rejects requests without a valid bearer token. A
// missing or invalid token is always a 401, never an anonymous pass.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "No authentication token, access denied")
		}
		return c.Next()
	}
}
