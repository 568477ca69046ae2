// Package value defines the Go representation of example values handled by
// the example database, together with the textual representation and
// equivalence rules used when ordering and comparing them.
//
// Scalars are plain Go values: integers (any integer kind on input, int64
// after decoding), float64, complex128, string for text, []byte for binary
// data and bool. Composite values use []any for lists, Tuple for fixed-length
// tuples, *Set for sets and frozensets, and map[any]any for fixed-shape
// records. Seeded generators are represented by *Random.
package value

import (
	"bytes"
	"math"
	"math/rand"
	"reflect"
	"sort"
)

// Tuple is a fixed-length ordered group of values
type Tuple []any

// Set is an unordered collection of distinct values. A frozen set and a
// mutable set with the same members are different kinds of value.
type Set struct {
	frozen bool
	elems  []any
}

// NewSet creates a mutable set holding the distinct members of elems
func NewSet(elems ...any) *Set {
	return newSet(false, elems)
}

// NewFrozenSet creates a frozen set holding the distinct members of elems
func NewFrozenSet(elems ...any) *Set {
	return newSet(true, elems)
}

// NewSetOfKind creates a set of the given kind
func NewSetOfKind(frozen bool, elems ...any) *Set {
	return newSet(frozen, elems)
}

func newSet(frozen bool, elems []any) *Set {
	s := &Set{frozen: frozen}
	for _, e := range elems {
		if !s.Contains(e) {
			s.elems = append(s.elems, e)
		}
	}
	return s
}

// Frozen reports whether the set is a frozenset
func (s *Set) Frozen() bool {
	return s.frozen
}

// Len returns the number of members
func (s *Set) Len() int {
	return len(s.elems)
}

// Contains reports whether v is a member of the set under Equal
func (s *Set) Contains(v any) bool {
	for _, e := range s.elems {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

// Elements returns the members in canonical order
func (s *Set) Elements() []any {
	out := make([]any, len(s.elems))
	copy(out, s.elems)
	SortCanonical(out)
	return out
}

// Random is a pseudo-random generator that remembers the seed it was
// created from. Only the seed is persisted, so a decoded generator restarts
// its sequence from the beginning.
type Random struct {
	seed int64
	rng  *rand.Rand
}

// NewRandom creates a generator seeded with seed
func NewRandom(seed int64) *Random {
	return &Random{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Seed returns the seed the generator was created with
func (r *Random) Seed() int64 {
	return r.seed
}

// Rand exposes the underlying generator
func (r *Random) Rand() *rand.Rand {
	return r.rng
}

// TypeName returns the name of the kind of v, used together with Repr to
// give values a canonical order.
func TypeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "NoneType"
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32, float64:
		return "float"
	case complex64, complex128:
		return "complex"
	case string:
		return "str"
	case []byte:
		return "bytes"
	case Tuple:
		return "tuple"
	case []any:
		return "list"
	case *Set:
		if x.frozen {
			return "frozenset"
		}
		return "set"
	case map[any]any:
		return "dict"
	case *Random:
		return "Random"
	}
	return reflect.TypeOf(v).String()
}

// Less orders values by (TypeName, Repr)
func Less(a, b any) bool {
	ta, tb := TypeName(a), TypeName(b)
	if ta != tb {
		return ta < tb
	}
	return Repr(a) < Repr(b)
}

// SortCanonical sorts vs in place into canonical order
func SortCanonical(vs []any) {
	sort.SliceStable(vs, func(i, j int) bool {
		return Less(vs[i], vs[j])
	})
}

// SortedKeys returns the keys of a record in canonical order
func SortedKeys(m map[any]any) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	SortCanonical(keys)
	return keys
}

// Lookup finds the entry of m whose key is Equal to key
func Lookup(m map[any]any, key any) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if Equal(k, key) {
			return v, true
		}
	}
	return nil, false
}

// AsInt64 converts any Go integer kind to int64. Unsigned values above
// math.MaxInt64 are rejected.
func AsInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return uintToInt64(uint64(x))
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return uintToInt64(x)
	}
	return 0, false
}

func uintToInt64(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

// IsInteger reports whether v is of a Go integer kind
func IsInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// Equal reports whether a and b are observably the same value. Integers
// compare numerically across Go kinds and float32/complex64 are widened
// first. NaN equals NaN. Sets compare by membership and records by their
// entries.
func Equal(a, b any) bool {
	if IsInteger(a) && IsInteger(b) {
		ia, okA := AsInt64(a)
		ib, okB := AsInt64(b)
		if okA && okB {
			return ia == ib
		}
		return reflect.DeepEqual(a, b)
	}
	a, b = widen(a), widen(b)

	switch x := a.(type) {
	case nil:
		return b == nil
	case float64:
		y, ok := b.(float64)
		return ok && floatEqual(x, y)
	case complex128:
		y, ok := b.(complex128)
		return ok && floatEqual(real(x), real(y)) && floatEqual(imag(x), imag(y))
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case Tuple:
		y, ok := b.(Tuple)
		return ok && sliceEqual(x, y)
	case []any:
		y, ok := b.([]any)
		return ok && sliceEqual(x, y)
	case *Set:
		y, ok := b.(*Set)
		if !ok || x.frozen != y.frozen || len(x.elems) != len(y.elems) {
			return false
		}
		for _, e := range x.elems {
			if !y.Contains(e) {
				return false
			}
		}
		return true
	case map[any]any:
		y, ok := b.(map[any]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, found := Lookup(y, k)
			if !found || !Equal(v, w) {
				return false
			}
		}
		return true
	case *Random:
		y, ok := b.(*Random)
		return ok && x.seed == y.seed
	}
	return reflect.DeepEqual(a, b)
}

// widen lifts float32 and complex64 to the forms decoding produces
func widen(v any) any {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case complex64:
		return complex128(x)
	}
	return v
}

func floatEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

func sliceEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
