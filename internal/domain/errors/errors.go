// Package errors defines the application error taxonomy. Every error that can
// cross the usecase boundary is either one of the sentinels below, a
// ValidationError, or an unexpected fault that the delivery layer converts to
// a generic 500.
package errors

import (
	"net/http"

	"gate/internal/errors"
)

// AppError defines the interface for application-specific errors.
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-facing error message
	Details() string   // Short diagnostic detail (optional, safe to expose)
}

// BaseError is a basic error structure that implements the AppError interface.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error.
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code.
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code.
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-facing error message.
func (e *BaseError) Message() string {
	return e.message
}

// Details returns the diagnostic detail.
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy of the error carrying a diagnostic detail. The
// detail is shown to clients, so it must never contain internals.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types.
var (
	// ErrInvalidCredentials is the single, enumeration-safe login failure.
	// The same text covers "no such account" and "wrong password".
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Incorrect identifier or password.",
		"",
	)

	// ErrUnauthorized covers missing, malformed, expired and revoked tokens.
	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Unauthorized",
		"",
	)

	// ErrManualAccountConflict rejects a social login whose email belongs to
	// a password-registered account, preventing silent account takeover.
	ErrManualAccountConflict = NewBaseError(
		http.StatusForbidden,
		"MANUAL_ACCOUNT_CONFLICT",
		"This email is already registered manually. Please log in using your password.",
		"",
	)

	// ErrProviderExchange reports a failed code-for-profile exchange with the
	// social provider. Provider internals go into Details, trimmed short.
	ErrProviderExchange = NewBaseError(
		http.StatusBadRequest,
		"PROVIDER_EXCHANGE_FAILED",
		"Authentication failed.",
		"",
	)

	// ErrUnknownProvider rejects a social route for a provider that is not
	// configured.
	ErrUnknownProvider = NewBaseError(
		http.StatusNotFound,
		"UNKNOWN_PROVIDER",
		"Resource not found",
		"",
	)

	// ErrUserAlreadyExists surfaces a uniqueness violation on email or phone.
	// Registration converts it into a 422 field error before it reaches the
	// client.
	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"User already exists",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)

	ErrTooManyRequests = NewBaseError(
		http.StatusTooManyRequests,
		"TOO_MANY_REQUESTS",
		"Too many requests, please slow down",
		"",
	)

	ErrInternal = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal Server Error",
		"",
	)
)
