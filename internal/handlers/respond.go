package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// statusFor maps a service error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// handleError writes the error envelope. Unclassified errors are logged,
// reported to Sentry and hidden behind a generic message.
func handleError(c *fiber.Ctx, err error) error {
	return handleErrorStatus(c, err, statusFor(err))
}

func handleErrorStatus(c *fiber.Ctx, err error, status int) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return c.Status(status).JSON(dto.Fail(svcErr.Error()))
	}

	slog.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestID(c),
		"error", err.Error(),
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Unauthorized"))
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// ErrorHandler is the app-level fallback for errors that escape a handler,
// such as unmatched routes or body-limit rejections. 5xx details stay in the logs.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err.Error(),
		)
		message = "Internal server error"
	}
	return c.Status(code).JSON(dto.Fail(message))
}
