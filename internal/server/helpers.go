// Package server contains the HTTP handlers for the discussion engine API.
package server

import (
	"errors"

	"alphaboard/internal/middleware"
	"alphaboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		label := "ID"
		if param == "commentId" {
			label = "comment ID"
		}
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+label))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// identity returns the caller resolved by AuthRequired. Calling it on a
// route without that middleware is a programming error.
func (s *Server) identity(c *fiber.Ctx) middleware.Identity {
	return middleware.Identity{
		UserID:      c.Locals(middleware.LocalsUserID).(uint),
		DisplayName: c.Locals(middleware.LocalsDisplayName).(string),
	}
}

// optionalUserID returns the caller's user id on routes behind AuthOptional;
// zero means anonymous.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(middleware.LocalsUserID).(uint); ok {
		return id
	}
	return 0
}

// statusForError maps the domain error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case models.CodeMaxDepthExceeded:
		return fiber.StatusUnprocessableEntity
	case models.CodeConflict:
		return fiber.StatusConflict
	case models.CodeStorageUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError writes an error from the service layer with the
// status its kind maps to.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForError(err), err)
}
