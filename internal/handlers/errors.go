package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/salesdash/internal/logging"
	"github.com/yourorg/salesdash/internal/models"
	"github.com/yourorg/salesdash/internal/store"
	"github.com/yourorg/salesdash/internal/validation"
)

const (
	msgInvalidBody      = "Invalid request body"
	msgValidationFailed = "Validation failed"
	msgInternal         = "Internal server error"
)

// writeError maps service errors to HTTP responses. Store and unexpected
// errors are logged and hidden behind a generic 500.
func writeError(c *fiber.Ctx, log logging.Logger, err error) error {
	var verrs validation.Errors
	switch {
	case errors.Is(err, validation.ErrMalformedBody):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: msgInvalidBody})
	case errors.As(err, &verrs):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: msgValidationFailed, Details: verrs})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "Not found"})
	case errors.Is(err, store.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{Error: "Record already exists"})
	default:
		log.Error(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: msgInternal})
	}
}

// ErrorHandler is the fiber.Config ErrorHandler. Framework errors keep their
// status; anything else becomes a generic 500.
func ErrorHandler(log logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return c.Status(ferr.Code).JSON(models.ErrorResponse{Error: ferr.Message})
		}
		log.Error(c.UserContext(), "unhandled error",
			"method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: msgInternal})
	}
}
