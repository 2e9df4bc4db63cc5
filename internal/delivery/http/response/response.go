// Package response defines the unified JSON envelope of the API.
package response

import (
	"github.com/labstack/echo/v4"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Success sends a successful response with optional data and message.
func Success(c echo.Context, statusCode int, data any, message string) error {
	return c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a failed response with a user-facing message and an optional
// short diagnostic detail.
func Error(c echo.Context, statusCode int, message, detail string) error {
	return c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

// ValidationFailed sends the 422 envelope carrying the per-field message map.
func ValidationFailed(c echo.Context, statusCode int, message string, fields map[string][]string) error {
	return c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Errors:  fields,
	})
}
