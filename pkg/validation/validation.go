// Package validation carries field-level input errors from the domain
// services to the HTTP edge, where they become 400 responses.
package validation

import (
	"errors"
	"fmt"
)

// Error rejects a request before any write happens.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func New(field, reason string) error {
	return &Error{Field: field, Reason: reason}
}

// As extracts the validation error from err's chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
