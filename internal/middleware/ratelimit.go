package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techfix-ai/techfix-backend/internal/ratelimit"
)

// RateLimit rejects clients over the sliding-window budget with 429
// and clients blocked for repeated auth failures with 403.
func RateLimit(limiter *ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()

		if limiter.IsBlocked(ip) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Too many failed attempts, try again later",
			})
		}

		if !limiter.Allow(ip) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded",
			})
		}

		return c.Next()
	}
}
