package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docflow/internal/apperr"
	"docflow/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Path      string            `json:"path"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "DOCUMENT_NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
// - fields: optional per-field validation messages
func writeError(c *fiber.Ctx, status int, code, message string, fields map[string]string) error {
	res := errorPayload{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Code:      code,
		Message:   message,
		Path:      c.Path(),
		RequestID: middleware.RequestIDFrom(c),
		Fields:    fields,
	}
	return c.Status(status).JSON(res)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
//
// Typed application errors keep their code and message. Fiber errors map to a
// generic code per status. Anything else is logged and answered with a bare 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok && e.Kind != apperr.KindInternal {
			status := e.Kind.HTTPStatus()
			if status >= fiber.StatusInternalServerError {
				log.Warn("dependency failure",
					zap.String("request_id", middleware.RequestIDFrom(c)),
					zap.String("path", c.Path()),
					zap.Error(err))
			}
			return writeError(c, status, e.Code, e.Message, e.Fields)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusBadRequest:
				return writeError(c, fe.Code, "BAD_REQUEST", "bad request", nil)
			case fiber.StatusNotFound:
				return writeError(c, fe.Code, "NOT_FOUND", "resource not found", nil)
			case fiber.StatusMethodNotAllowed:
				return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed", nil)
			case fiber.StatusRequestEntityTooLarge:
				return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large", nil)
			}
			if fe.Code < fiber.StatusInternalServerError {
				return writeError(c, fe.Code, "REQUEST_ERROR", http.StatusText(fe.Code), nil)
			}
		}

		log.Error("unhandled error",
			zap.String("request_id", middleware.RequestIDFrom(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}
