// Package catalog holds the pieces shared by the public content services:
// slugs, list queries, form binding, image handling and error mapping.
package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrSlugTaken     = errors.New("slug already in use")
	ErrSlugImmutable = errors.New("slug cannot be changed")
	ErrInvalidInput  = errors.New("invalid input")
)

// Invalid wraps ErrInvalidInput with a field-specific message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
