package holiday

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOperation is returned by the mutators of the read-only
// views handed out by a Calendar. It marks a programming error, not a data
// problem, and is never produced by validation.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// ValidationError reports an invalid field at construction time.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("holiday: invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func unsupported(op string) error {
	return fmt.Errorf("holiday: %s: %w", op, ErrUnsupportedOperation)
}
