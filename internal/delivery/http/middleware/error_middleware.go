package middleware

import (
	"log/slog"
	"net/http"

	deliverycontext "gate/internal/delivery/context"
	"gate/internal/delivery/http/response"
	domainerrors "gate/internal/domain/errors"
	"gate/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware converts every error escaping a handler into the API's
// envelope. It is installed as Echo's HTTPErrorHandler.
type ErrorMiddleware struct {
	logger *slog.Logger
	audit  service.AuditSink
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger, audit service.AuditSink) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
		audit:  audit,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Validation failures carry the per-field message map.
	var validationErr *domainerrors.ValidationError
	if errors.As(err, &validationErr) {
		_ = response.ValidationFailed(c, validationErr.HTTPCode(), validationErr.Message(), validationErr.Fields())

		return
	}

	// Taxonomy errors map one-to-one onto their status and message.
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		_ = response.Error(c, appErr.HTTPCode(), appErr.Message(), appErr.Details())

		return
	}

	// Echo's own errors (unknown route, method, oversized body, throttling)
	// get the fixed texts of the API.
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = response.Error(c, httpErr.Code, messageForStatus(httpErr), "")

		return
	}

	// Everything else is an unexpected fault: log it, raise it on the audit
	// channel and answer with an opaque 500.
	m.logger.Error("Unhandled error",
		slog.String("error", err.Error()),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)
	m.audit.LogError(c.Request().Context(), "unhandled server error", map[string]any{
		"path":       c.Request().URL.Path,
		"method":     c.Request().Method,
		"request_id": deliverycontext.GetRequestID(c),
		"error":      err.Error(),
	})

	_ = response.Error(c, http.StatusInternalServerError, "Internal Server Error", "")
}

// messageForStatus returns the fixed client-facing text for transport-level
// failures.
func messageForStatus(httpErr *echo.HTTPError) string {
	switch httpErr.Code {
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusTooManyRequests:
		return "Too many requests, please slow down"
	case http.StatusInternalServerError:
		return "Internal Server Error"
	default:
		if msg, ok := httpErr.Message.(string); ok {
			return msg
		}

		return http.StatusText(httpErr.Code)
	}
}
