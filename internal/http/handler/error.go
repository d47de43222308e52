package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/http/middleware"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
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
// - code: machine-readable error code (catalog code such as "1002", or a transport code like "NOT_FOUND")
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
//
// Routing errors (*fiber.Error) keep their status. Everything else is resolved through apperr:
// the kind picks the status and the catalog entry supplies code and message. Causes of 5xx
// responses are logged, never returned.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusBadRequest:
				return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
			case fiber.StatusNotFound:
				return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
			case fiber.StatusMethodNotAllowed:
				return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
			case fiber.StatusRequestEntityTooLarge:
				return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
			default:
				return writeError(c, fe.Code, "INTERNAL_ERROR", "internal server error")
			}
		}

		e := apperr.As(err)
		status := apperr.HTTPStatus(e.Kind)
		if status >= fiber.StatusInternalServerError {
			log.Error("request_failed",
				"request_id", requestIDFromCtx(c),
				"method", c.Method(),
				"path", c.Path(),
				"code", string(e.Code),
				"error", err,
			)
			entry := apperr.Lookup(e.Code)
			return writeError(c, status, string(entry.Code), entry.Message)
		}
		return writeError(c, status, string(e.Code), e.Message)
	}
}
