package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing origin, unparseable fare).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when the acting account lacks the administrator
// capability an operation requires. No state is changed when it is returned.
// Handlers should map this to HTTP 403.
var ErrUnauthorized = errors.New("unauthorized")

// FieldError is a validation failure attributed to a single input field.
// errors.Is(err, ErrValidation) reports true for every FieldError.
type FieldError struct {
	// Field is the input path, e.g. "origin" or "stops[2].location".
	Field   string
	Message string
}

// NewFieldError returns a *FieldError for field with the given message.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return ErrValidation.Error() + ": " + e.Field + ": " + e.Message
}

// Unwrap lets errors.Is match ErrValidation.
func (e *FieldError) Unwrap() error {
	return ErrValidation
}
