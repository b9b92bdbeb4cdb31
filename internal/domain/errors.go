package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrForbidden indicates the caller may not perform the operation.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports input the server refuses to accept. Message is
// returned to clients verbatim.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError without field details.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// FieldError builds a ValidationError attributed to a single field.
func FieldError(field, msg string) *ValidationError {
	return &ValidationError{
		Message: msg,
		Fields:  map[string][]string{field: {msg}},
	}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
