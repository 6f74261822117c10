package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talent_server/pkg/apperr"
)

// ValidateUUID rejects requests whose route parameter is not a UUID.
func ValidateUUID(paramName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value := c.Params(paramName)
		if value == "" {
			return c.Next()
		}
		if _, err := uuid.Parse(value); err != nil {
			return apperr.InvalidParam(paramName, value)
		}
		return c.Next()
	}
}
