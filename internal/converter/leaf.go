package converter

import (
	"encoding/base64"

	"github.com/listatree/hypothesis/internal/codec"
	"github.com/listatree/hypothesis/internal/value"
)

// FloatConverter keeps floats distinguishable from integers in JSON text
type FloatConverter struct{}

// Encode implements Converter
func (FloatConverter) Encode(v any) (any, error) {
	switch f := v.(type) {
	case float64:
		return codec.Float(f), nil
	case float32:
		return codec.Float(f), nil
	}
	return nil, wrongFormat("float", v)
}

// Decode implements Converter
func (FloatConverter) Decode(j any) (any, error) {
	f, ok := codec.ParseFloat(j)
	if !ok {
		return nil, malformed("float", j, "not a number")
	}
	return f, nil
}

// ComplexConverter stores complex numbers as [real, imaginary]
type ComplexConverter struct{}

// Encode implements Converter
func (ComplexConverter) Encode(v any) (any, error) {
	var c complex128
	switch x := v.(type) {
	case complex128:
		c = x
	case complex64:
		c = complex128(x)
	default:
		return nil, wrongFormat("complex", v)
	}
	return []any{codec.Float(real(c)), codec.Float(imag(c))}, nil
}

// Decode implements Converter
func (ComplexConverter) Decode(j any) (any, error) {
	parts, ok := j.([]any)
	if !ok || len(parts) != 2 {
		return nil, malformed("complex", j, "expected [real, imag]")
	}
	re, okRe := codec.ParseFloat(parts[0])
	im, okIm := codec.ParseFloat(parts[1])
	if !okRe || !okIm {
		return nil, malformed("complex", j, "components must be numbers")
	}
	return complex(re, im), nil
}

// TextConverter stores text as a JSON string. Text is assumed to be valid
// unicode already.
type TextConverter struct{}

// Encode implements Converter
func (TextConverter) Encode(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, wrongFormat("text", v)
	}
	return s, nil
}

// Decode implements Converter
func (TextConverter) Decode(j any) (any, error) {
	s, ok := j.(string)
	if !ok {
		return nil, malformed("text", j, "not a string")
	}
	return s, nil
}

// BinaryConverter stores binary data base64 encoded, since JSON has no
// binary primitive
type BinaryConverter struct{}

// Encode implements Converter
func (BinaryConverter) Encode(v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, wrongFormat("binary", v)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode implements Converter
func (BinaryConverter) Decode(j any) (any, error) {
	s, ok := j.(string)
	if !ok {
		return nil, malformed("binary", j, "not a string")
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, malformed("binary", j, err.Error())
	}
	return b, nil
}

// RandomConverter stores a seeded generator as its seed alone. Decoding
// reseeds a fresh generator; internal state is not persisted.
type RandomConverter struct{}

// Encode implements Converter
func (RandomConverter) Encode(v any) (any, error) {
	r, ok := v.(*value.Random)
	if !ok || r == nil {
		return nil, wrongFormat("random", v)
	}
	return r.Seed(), nil
}

// Decode implements Converter
func (RandomConverter) Decode(j any) (any, error) {
	seed, ok := j.(int64)
	if !ok {
		return nil, malformed("random", j, "seed must be an integer")
	}
	return value.NewRandom(seed), nil
}

// JustConverter stores nothing: the constant comes back from the
// descriptor, and the payload is always null.
type JustConverter struct {
	Value any
}

// Encode implements Converter
func (c JustConverter) Encode(v any) (any, error) {
	if !value.Equal(c.Value, v) {
		return nil, wrongFormat("just", v)
	}
	return nil, nil
}

// Decode implements Converter
func (c JustConverter) Decode(j any) (any, error) {
	if j != nil {
		return nil, malformed("just", j, "payload must be null")
	}
	return c.Value, nil
}
