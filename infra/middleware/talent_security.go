package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"talent_server/core/domain"
	"talent_server/pkg/response"
)

// SecurityHeaders sets conservative response headers for a JSON API.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		return c.Next()
	}
}

// WriteLimiter caps mutating requests per actor. Reads pass through.
// It must run after the auth middleware.
func WriteLimiter(max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			switch c.Method() {
			case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
				return true
			}
			return false
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			if actor, ok := c.Locals(ActorKey).(*domain.Actor); ok && actor != nil {
				return "actor:" + actor.ID
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Fail(c, fiber.StatusTooManyRequests, "Too many requests", nil)
		},
	})
}
