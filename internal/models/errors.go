package models

import (
	"errors"
	"fmt"
)

// ErrDuplicateKey is returned by entity stores when a unique field already exists.
var ErrDuplicateKey = errors.New("duplicate key")

// ValidationError reports a missing or invalid field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
