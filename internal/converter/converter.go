// Package converter turns example values into JSON-compatible values and
// back, directed by descriptors. A Registry resolves each descriptor to a
// Converter, building composite converters from the converters of their
// children once, at resolution time.
package converter

import (
	"errors"
	"fmt"

	"github.com/listatree/hypothesis/internal/value"
)

// Converter maps values of one shape to and from a JSON-compatible
// representation. It does not produce text; see package codec.
type Converter interface {
	// Encode turns a value into a JSON-ready value
	Encode(v any) (any, error)

	// Decode rebuilds a value from its JSON-ready form
	Decode(j any) (any, error)
}

// Common converter errors
var (
	// ErrNotSerializable is returned when a descriptor is excluded from
	// serialization
	ErrNotSerializable = errors.New("not serializable")

	// ErrWrongFormat is returned when a value handed to Encode does not
	// have the shape the converter was built for
	ErrWrongFormat = errors.New("wrong format")

	// ErrEnumerationLookup is returned when an enumerated choice is asked to
	// encode a value that is not one of its choices
	ErrEnumerationLookup = errors.New("value is not one of the choices")

	// ErrMalformedRecord is returned when a stored JSON value cannot be
	// decoded into the expected shape
	ErrMalformedRecord = errors.New("malformed stored record")
)

// NotSerializableError names the descriptor that cannot be serialized
type NotSerializableError struct {
	Descriptor string
}

func (e *NotSerializableError) Error() string {
	return fmt.Sprintf("%s does not describe a serializable type", e.Descriptor)
}

// Is matches ErrNotSerializable
func (e *NotSerializableError) Is(target error) bool {
	return target == ErrNotSerializable
}

func wrongFormat(name string, v any) error {
	return fmt.Errorf("%w: %s converter cannot encode %s", ErrWrongFormat, name, value.Repr(v))
}

func malformed(name string, j any, reason string) error {
	return fmt.Errorf("%w: %s converter cannot decode %s: %s", ErrMalformedRecord, name, value.Repr(j), reason)
}

type passThrough struct{}

// PassThrough leaves values untouched in both directions. It serves
// natively JSON-compatible shapes and is the registry fallback.
var PassThrough Converter = passThrough{}

func (passThrough) Encode(v any) (any, error) { return v, nil }

func (passThrough) Decode(j any) (any, error) { return j, nil }
