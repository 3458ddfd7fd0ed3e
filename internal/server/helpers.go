package server

import (
	"launchpad/internal/middleware"
	"launchpad/internal/models"
	"launchpad/internal/service"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps an AppError code onto an HTTP status.
func statusFor(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case models.CodeUnauthorized:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusFor(err), err)
}

func invalidBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
}

// caller returns the authenticated caller, or nil for anonymous requests.
func caller(c *fiber.Ctx) *service.Caller {
	return service.CallerFromUser(middleware.CurrentUser(c))
}
