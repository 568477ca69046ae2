package database

import (
	"errors"
	"fmt"

	"github.com/listatree/hypothesis/internal/descriptor"
	"github.com/listatree/hypothesis/internal/value"
)

// ErrShapeMismatch is returned when a value does not satisfy the strategy
// bound to a storage, either before a save or after a fetch decodes it
var ErrShapeMismatch = errors.New("value does not match descriptor")

// ShapeMismatchError names the offending value and the descriptor it failed
// to match
type ShapeMismatchError struct {
	Value      string
	Descriptor string
}

func newShapeMismatch(v any, d descriptor.Descriptor) *ShapeMismatchError {
	return &ShapeMismatchError{Value: value.Repr(v), Descriptor: d.String()}
}

// Error implements the error interface
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s could not have been produced by %s", e.Value, e.Descriptor)
}

// Is reports whether target is ErrShapeMismatch
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// IsShapeMismatch returns true if err is a shape mismatch
func IsShapeMismatch(err error) bool {
	return errors.Is(err, ErrShapeMismatch)
}
