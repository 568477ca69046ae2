package converter

import (
	"fmt"

	"github.com/listatree/hypothesis/internal/strategy"
	"github.com/listatree/hypothesis/internal/value"
)

// ListConverter maps an element converter over a list
type ListConverter struct {
	Element Converter
}

// Encode implements Converter
func (c ListConverter) Encode(v any) (any, error) {
	xs, ok := v.([]any)
	if !ok {
		return nil, wrongFormat("list", v)
	}
	return mapItems(xs, c.Element.Encode)
}

// Decode implements Converter
func (c ListConverter) Decode(j any) (any, error) {
	xs, ok := j.([]any)
	if !ok {
		return nil, malformed("list", j, "not an array")
	}
	return mapItems(xs, c.Element.Decode)
}

func mapItems(xs []any, fn func(any) (any, error)) ([]any, error) {
	out := make([]any, len(xs))
	for i, x := range xs {
		y, err := fn(x)
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}

// CollectionConverter round-trips a set or frozenset through the list
// converter for the same element shapes
type CollectionConverter struct {
	List   Converter
	Frozen bool
}

// Encode implements Converter
func (c CollectionConverter) Encode(v any) (any, error) {
	s, ok := v.(*value.Set)
	if !ok || s == nil || s.Frozen() != c.Frozen {
		return nil, wrongFormat(c.name(), v)
	}
	return c.List.Encode(s.Elements())
}

// Decode implements Converter
func (c CollectionConverter) Decode(j any) (any, error) {
	decoded, err := c.List.Decode(j)
	if err != nil {
		return nil, err
	}
	items, ok := decoded.([]any)
	if !ok {
		return nil, malformed(c.name(), j, "not an array")
	}
	return value.NewSetOfKind(c.Frozen, items...), nil
}

func (c CollectionConverter) name() string {
	if c.Frozen {
		return "frozenset"
	}
	return "set"
}

// TupleConverter stores a tuple as an array with one entry per position.
//
// A tuple of arity one is stored as its bare element rather than a
// one-element array, and Decode wraps it back.
type TupleConverter struct {
	Elements []Converter
}

// Encode implements Converter
func (c TupleConverter) Encode(v any) (any, error) {
	t, ok := v.(value.Tuple)
	if !ok || len(t) != len(c.Elements) {
		return nil, wrongFormat("tuple", v)
	}
	if len(c.Elements) == 1 {
		return c.Elements[0].Encode(t[0])
	}
	out := make([]any, len(t))
	for i, conv := range c.Elements {
		enc, err := conv.Encode(t[i])
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

// Decode implements Converter
func (c TupleConverter) Decode(j any) (any, error) {
	if len(c.Elements) == 1 {
		x, err := c.Elements[0].Decode(j)
		if err != nil {
			return nil, err
		}
		return value.Tuple{x}, nil
	}
	xs, ok := j.([]any)
	if !ok || len(xs) != len(c.Elements) {
		return nil, malformed("tuple", j, fmt.Sprintf("expected an array of length %d", len(c.Elements)))
	}
	out := make(value.Tuple, len(xs))
	for i, conv := range c.Elements {
		dec, err := conv.Decode(xs[i])
		if err != nil {
			return nil, err
		}
		out[i] = dec
	}
	return out, nil
}

// RecordConverter stores a fixed-shape record as an array of its values in
// canonical key order, which sorts keys by (type name, repr). Keys never
// appear in the stored form, so any comparable key type works.
type RecordConverter struct {
	keys    []any
	entries []Converter
}

// NewRecordConverter builds a record converter from per-key converters
func NewRecordConverter(entries map[any]Converter) RecordConverter {
	keys := make([]any, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	value.SortCanonical(keys)

	convs := make([]Converter, len(keys))
	for i, k := range keys {
		convs[i] = entries[k]
	}
	return RecordConverter{keys: keys, entries: convs}
}

// Keys returns the record keys in canonical order
func (c RecordConverter) Keys() []any {
	return c.keys
}

// Encode implements Converter
func (c RecordConverter) Encode(v any) (any, error) {
	m, ok := v.(map[any]any)
	if !ok || len(m) != len(c.keys) {
		return nil, wrongFormat("record", v)
	}
	out := make([]any, len(c.keys))
	for i, k := range c.keys {
		x, found := value.Lookup(m, k)
		if !found {
			return nil, wrongFormat("record", v)
		}
		enc, err := c.entries[i].Encode(x)
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

// Decode implements Converter
func (c RecordConverter) Decode(j any) (any, error) {
	xs, ok := j.([]any)
	if !ok || len(xs) != len(c.keys) {
		return nil, malformed("record", j, fmt.Sprintf("expected an array of length %d", len(c.keys)))
	}
	out := make(map[any]any, len(xs))
	for i, k := range c.keys {
		dec, err := c.entries[i].Decode(xs[i])
		if err != nil {
			return nil, err
		}
		out[k] = dec
	}
	return out, nil
}

// OneOfConverter stores a value of a union as [branch index, payload]. The
// branch is the first alternative, in declared order, whose strategy
// accepts the value. Overlapping alternatives therefore always encode with
// the earliest match; decoding trusts the stored index.
type OneOfConverter struct {
	Alternatives []Converter
	Strategies   []strategy.Strategy
}

// Encode implements Converter
func (c OneOfConverter) Encode(v any) (any, error) {
	for i, s := range c.Strategies {
		if s.CouldHaveProduced(v) {
			payload, err := c.Alternatives[i].Encode(v)
			if err != nil {
				return nil, err
			}
			return []any{int64(i), payload}, nil
		}
	}
	return nil, wrongFormat("one_of", v)
}

// Decode implements Converter
func (c OneOfConverter) Decode(j any) (any, error) {
	pair, ok := j.([]any)
	if !ok || len(pair) != 2 {
		return nil, malformed("one_of", j, "expected [index, payload]")
	}
	i, ok := pair[0].(int64)
	if !ok || i < 0 || i >= int64(len(c.Alternatives)) {
		return nil, malformed("one_of", j, "branch index out of range")
	}
	return c.Alternatives[i].Decode(pair[1])
}

// SampledFromConverter stores a choice as its index in the choice list
type SampledFromConverter struct {
	Choices []any
}

// Encode implements Converter
func (c SampledFromConverter) Encode(v any) (any, error) {
	for i, choice := range c.Choices {
		if value.Equal(choice, v) {
			return int64(i), nil
		}
	}
	return nil, fmt.Errorf("%w: %s not in %s", ErrEnumerationLookup, value.Repr(v), value.Repr(value.Tuple(c.Choices)))
}

// Decode implements Converter
func (c SampledFromConverter) Decode(j any) (any, error) {
	i, ok := j.(int64)
	if !ok || i < 0 || i >= int64(len(c.Choices)) {
		return nil, malformed("sampled_from", j, "choice index out of range")
	}
	return c.Choices[i], nil
}
