package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"linkvault/internal/http/middleware"
	"linkvault/internal/service"
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
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
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
			msg := "authentication required"
			if e, ok := err.(*fiber.Error); ok && e.Message != "" {
				msg = e.Message
			}
			return writeError(c, status, "UNAUTHORIZED", msg)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

// writeServiceError maps service-layer errors to the corresponding HTTP
// response. Unknown errors fall through to a generic 500.
func writeServiceError(c *fiber.Ctx, op string, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", verr.Reason)
	}

	switch {
	case errors.Is(err, service.ErrInvalidLink):
		return writeError(c, fiber.StatusForbidden, "INVALID_LINK", "Invalid link")
	case errors.Is(err, service.ErrExpired):
		return writeError(c, fiber.StatusGone, "EXPIRED", "Link expired")
	case errors.Is(err, service.ErrAlreadyConsumed):
		return writeError(c, fiber.StatusGone, "ALREADY_USED", "Link already used")
	case errors.Is(err, service.ErrLimitReached):
		msg := "View limit reached"
		if op == "download" {
			msg = "Download limit reached"
		}
		return writeError(c, fiber.StatusGone, "LIMIT_REACHED", msg)
	case errors.Is(err, service.ErrPasswordRequired):
		return writeError(c, fiber.StatusUnauthorized, "PASSWORD_REQUIRED", "Password required")
	case errors.Is(err, service.ErrPasswordInvalid):
		return writeError(c, fiber.StatusForbidden, "PASSWORD_INVALID", "Invalid password")
	case errors.Is(err, service.ErrOwnerAuthRequired):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Owner authentication required for this link.")
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password.")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
