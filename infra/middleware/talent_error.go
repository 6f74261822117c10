package middleware

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talent_server/pkg/apperr"
	"talent_server/pkg/logger"
	"talent_server/pkg/response"
)

// ErrorHandler renders every error as a failed envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.WithContext(c.UserContext())

		var appErr *apperr.AppError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			l := log.WithField("error_kind", appErr.Kind)
			if appErr.Err != nil {
				l = l.WithError(appErr.Err)
			}
			if appErr.Status >= fiber.StatusInternalServerError {
				l.Error("request failed: %s", appErr.Message)
			} else {
				l.Warn("request rejected: %s", appErr.Message)
			}
			return response.Fail(c, appErr.Status, appErr.Message, appErr.Errors)

		case errors.As(err, &fiberErr):
			return response.Fail(c, fiberErr.Code, fiberErr.Message, nil)

		default:
			log.WithError(err).Error("unexpected error")
			return response.Fail(c, fiber.StatusInternalServerError, "Internal server error", nil)
		}
	}
}

// RequestID tags the request and its context with an id.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals("request_id", requestID)
		c.Set(fiber.HeaderXRequestID, requestID)
		c.SetUserContext(context.WithValue(c.UserContext(), logger.RequestIDKey, requestID))
		return c.Next()
	}
}

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet; use the status it will pick.
			status = apperr.GetHTTPStatus(err)
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		log := logger.WithContext(c.UserContext()).
			WithDuration(time.Since(start)).
			WithFields(map[string]any{
				"method": c.Method(),
				"path":   c.Path(),
				"status": status,
				"ip":     c.IP(),
			})

		switch {
		case status >= 500:
			log.Error("%s %s -> %d", c.Method(), c.Path(), status)
		case status >= 400:
			log.Warn("%s %s -> %d", c.Method(), c.Path(), status)
		default:
			log.Info("%s %s -> %d", c.Method(), c.Path(), status)
		}
		return err
	}
}

// Recover turns a panic into a 500 envelope.
func Recover() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithContext(c.UserContext()).WithFields(map[string]any{
					"panic":  fmt.Sprintf("%v", r),
					"stack":  string(debug.Stack()),
					"path":   c.Path(),
					"method": c.Method(),
				}).Error("panic recovered")
				err = apperr.Internal("Internal server error")
			}
		}()
		return c.Next()
	}
}
