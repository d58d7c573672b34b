package export

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is wrapped by every registration-time validation error.
var ErrInvalidOptions = errors.New("invalid export options")

// Invalidf returns a validation error wrapping ErrInvalidOptions.
func Invalidf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, a...))
}
