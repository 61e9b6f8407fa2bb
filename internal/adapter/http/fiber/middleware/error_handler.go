package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
)

// ErrorHandler maps domain sentinel errors to HTTP status codes in one
// place. Handlers return service errors unwrapped; anything unrecognized
// becomes a logged 500 with a generic body.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		code := statusFor(err)
		if code == fiber.StatusInternalServerError {
			log.Error("internal server error",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
			)
			return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrEmailTaken):
		return fiber.StatusConflict

	case errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrStartInPast),
		errors.Is(err, domain.ErrStartBeyondWindow),
		errors.Is(err, domain.ErrInvalidEnergy):
		return fiber.StatusUnprocessableEntity

	case domain.IsConflict(err),
		errors.Is(err, domain.ErrNotCancellable),
		errors.Is(err, domain.ErrNotFinishedYet),
		errors.Is(err, domain.ErrAlreadyClosed),
		errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrChargeNotFinalized):
		return fiber.StatusConflict

	case errors.Is(err, domain.ErrTariffMissing):
		return fiber.StatusNotFound

	default:
		return fiber.StatusInternalServerError
	}
}
