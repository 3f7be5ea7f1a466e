package entity

import (
	"fmt"
)

// ValidationError reports which field of an impression, action, or snapshot
// payload failed validation. Handlers return its message verbatim, so the
// message must never carry anything beyond the field diagnosis.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
