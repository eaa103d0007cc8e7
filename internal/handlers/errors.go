package handlers

import (
	"errors"
	"log/slog"

	"socialize/internal/credentials"
	"socialize/internal/forms"
	"socialize/internal/repositories"
	"socialize/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as 500 without their message.
func respondError(c *fiber.Ctx, log *slog.Logger, message string, err error) error {
	var verr *forms.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Violations,
		})
	case errors.Is(err, credentials.ErrAlreadyHashed), errors.Is(err, credentials.ErrEmptySecret):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors": []forms.Violation{{
				Field:   "password",
				Tag:     "secret",
				Message: "password cannot be used as a secret",
			}},
		})
	case errors.Is(err, credentials.ErrCredentialMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": message,
			"error":   "Passwords do not match",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": message,
			"error":   services.ErrInvalidCredentials.Error(),
		})
	case errors.Is(err, repositories.ErrUsernameTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": message,
			"error":   "Username is already taken",
		})
	case errors.Is(err, services.ErrNotPostAuthor):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrPostNotFound),
		errors.Is(err, services.ErrUserDeleted):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   "Not found",
		})
	}

	log.Error(message, "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
