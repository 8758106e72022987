package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
)

// ok responde {"success": true, <key>: payload}.
func ok(c *fiber.Ctx, status int, key string, payload any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, key: payload})
}

// okMessage responde {"success": true, "message": msg}.
func okMessage(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{"success": true, "message": msg})
}

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Success: false, Code: code, Message: msg})
}

// errorStatus clase de error -> (HTTP status, código).
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrNCFCollision):
		return fiber.StatusConflict, "NCF_COLLISION"
	case errors.Is(err, domain.ErrNCFRangeExhausted):
		return fiber.StatusConflict, "NCF_RANGE_EXHAUSTED"
	case errors.Is(err, domain.ErrNCFExpired):
		return fiber.StatusConflict, "NCF_EXPIRED"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrRetryable):
		return fiber.StatusServiceUnavailable, "RETRYABLE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// respondError traduce el error a {"success": false, "code", "message"}. Los 500 se registran y
// el cliente solo recibe un mensaje genérico.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, code := errorStatus(err)
	switch status {
	case fiber.StatusInternalServerError:
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return fail(c, status, code, "error interno, intente más tarde")
	case fiber.StatusServiceUnavailable:
		log.Warn().Err(err).Str("path", c.Path()).Msg("almacenamiento no disponible")
		return fail(c, status, code, domain.ErrRetryable.Error())
	}
	return fail(c, status, code, err.Error())
}
