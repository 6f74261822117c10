// Package response renders the uniform API envelope.
package response

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Data    any      `json:"data"`
}

// OK returns a 200 response.
func OK(c *fiber.Ctx, message string, data any) error {
	return Write(c, fiber.StatusOK, message, data)
}

// Created returns a 201 created response.
func Created(c *fiber.Ctx, message string, data any) error {
	return Write(c, fiber.StatusCreated, message, data)
}

// Write renders a successful envelope with an explicit status.
func Write(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Errors:  []string{},
		Data:    data,
	})
}

// Fail renders a failed envelope; data is always null.
func Fail(c *fiber.Ctx, status int, message string, errs []string) error {
	if errs == nil {
		errs = []string{}
	}
	return c.Status(status).JSON(Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
		Data:    nil,
	})
}
