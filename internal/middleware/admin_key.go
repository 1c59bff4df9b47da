package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// RequireAdminKey gates analytics and housekeeping endpoints behind
// the X-Admin-Key header.
func RequireAdminKey(adminKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if adminKey == "" {
			// An unset key means the endpoints stay closed.
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access not configured",
			})
		}

		provided := c.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden",
			})
		}

		return c.Next()
	}
}
