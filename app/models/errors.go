package models

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned by draft builders when a required field is empty
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidValue is returned when a field is outside its allowed set or range
	ErrInvalidValue = errors.New("invalid value")
)

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidValue}, args...)...)
}
