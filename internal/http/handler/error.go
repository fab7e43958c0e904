package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docuvault/internal/http/middleware"
	"docuvault/internal/multipart"
	"docuvault/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_ERROR", "NOT_FOUND")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps service-layer sentinel errors to HTTP responses.
// Anything unmapped becomes an opaque 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrIDRequired),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrBrandRequired),
		errors.Is(err, service.ErrModelRequired),
		errors.Is(err, service.ErrFileRequired),
		errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrInvalidRole):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, multipart.ErrMalformedRequest):
		return writeError(c, fiber.StatusBadRequest, "MALFORMED_REQUEST", "malformed multipart request")
	case errors.Is(err, service.ErrUnsupportedMIME):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCommunityNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return writeError(c, fiber.StatusConflict, "EMAIL_TAKEN", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrCodeInvalid),
		errors.Is(err, service.ErrInvalidToken):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, service.ErrCodeExpired):
		return writeError(c, fiber.StatusGone, "CODE_EXPIRED", err.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "access denied")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
