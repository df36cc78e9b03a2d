package content

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// required trims value and rejects it when nothing is left.
func required(field, value, message string) (string, error) {
	value = trim(value)
	if value == "" {
		return "", &ValidationError{Field: field, Message: message}
	}
	return value, nil
}
