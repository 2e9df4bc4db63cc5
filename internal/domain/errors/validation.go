package errors

import "net/http"

// ValidationError carries a per-field map of human-readable messages for a
// 422 response. The whole request fails atomically: a non-empty map means no
// write has occurred.
type ValidationError struct {
	fields map[string][]string
}

// NewValidationError creates an empty validation error to be filled with
// field messages.
func NewValidationError() *ValidationError {
	return &ValidationError{fields: make(map[string][]string)}
}

// Add appends a message for the given field.
func (e *ValidationError) Add(field, message string) {
	e.fields[field] = append(e.fields[field], message)
}

// HasErrors reports whether any field message has been recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.fields) > 0
}

// Fields returns the per-field message map for the response body.
func (e *ValidationError) Fields() map[string][]string {
	return e.fields
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message()
}

// HTTPCode returns the HTTP status code.
func (e *ValidationError) HTTPCode() int {
	return http.StatusUnprocessableEntity
}

// ErrorCode returns the business error code.
func (e *ValidationError) ErrorCode() string {
	return "VALIDATION_FAILED"
}

// Message returns the user-facing error message.
func (e *ValidationError) Message() string {
	return "The given data was invalid."
}

// Details returns the diagnostic detail.
func (e *ValidationError) Details() string {
	return ""
}
