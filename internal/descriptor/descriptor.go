// Package descriptor describes the shape of example values. A descriptor
// has a canonical display string, used as the storage key, and a structural
// fingerprint and hash, used to memoize converters and storages. Neither
// depends on object identity or on map iteration order.
package descriptor

import (
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/listatree/hypothesis/internal/value"
)

// Descriptor is a structural description of a shape of value
type Descriptor interface {
	// String returns the canonical display rendering
	String() string

	// Children returns the directly nested descriptors
	Children() []Descriptor
}

// Fingerprinter can be implemented by custom descriptors that need a
// fingerprint other than their type name and display string.
type Fingerprinter interface {
	Fingerprint() string
}

// Type is a primitive leaf shape
type Type string

// Primitive shapes
const (
	Int     Type = "int"
	Float   Type = "float"
	Text    Type = "text"
	Binary  Type = "binary"
	Bool    Type = "bool"
	Complex Type = "complex"
	Random  Type = "Random"
)

// Primitives lists every primitive shape
var Primitives = []Type{Int, Float, Text, Binary, Bool, Complex, Random}

func (t Type) String() string { return string(t) }

// Children returns nil
func (t Type) Children() []Descriptor { return nil }

// Named is a user-defined leaf shape identified by name
type Named struct {
	Name string
}

func (n Named) String() string { return n.Name }

// Children returns nil
func (n Named) Children() []Descriptor { return nil }

// List describes lists whose elements each match one of Elements
type List struct {
	Elements []Descriptor
}

// ListOf builds a list descriptor
func ListOf(elems ...Descriptor) List {
	return List{Elements: elems}
}

func (l List) String() string {
	return "[" + joinStrings(l.Elements) + "]"
}

// Children returns the element descriptors
func (l List) Children() []Descriptor { return l.Elements }

// Set describes sets (or frozensets) whose members each match one of
// Elements. Element order carries no meaning.
type Set struct {
	Elements []Descriptor
	Frozen   bool
}

// SetOf builds a set descriptor
func SetOf(elems ...Descriptor) Set {
	return Set{Elements: elems}
}

// FrozenSetOf builds a frozenset descriptor
func FrozenSetOf(elems ...Descriptor) Set {
	return Set{Elements: elems, Frozen: true}
}

func (s Set) String() string {
	parts := make([]string, len(s.Elements))
	for i, e := range s.Elements {
		parts[i] = e.String()
	}
	sort.Strings(parts)
	parts = dedupSorted(parts)

	switch {
	case len(parts) == 0 && s.Frozen:
		return "frozenset()"
	case len(parts) == 0:
		return "set()"
	case s.Frozen:
		return "frozenset({" + strings.Join(parts, ", ") + "})"
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Children returns the element descriptors in canonical order
func (s Set) Children() []Descriptor { return s.CanonicalElements() }

// CanonicalElements returns Elements sorted by fingerprint with structural
// duplicates removed. Sets that differ only in element order share it.
func (s Set) CanonicalElements() []Descriptor {
	type keyed struct {
		fp string
		d  Descriptor
	}
	ks := make([]keyed, len(s.Elements))
	for i, e := range s.Elements {
		ks[i] = keyed{Fingerprint(e), e}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].fp < ks[j].fp })

	out := make([]Descriptor, 0, len(ks))
	for i, k := range ks {
		if i > 0 && k.fp == ks[i-1].fp {
			continue
		}
		out = append(out, k.d)
	}
	return out
}

// Tuple describes fixed-length tuples, one descriptor per position
type Tuple struct {
	Elements []Descriptor
}

// TupleOf builds a tuple descriptor
func TupleOf(elems ...Descriptor) Tuple {
	return Tuple{Elements: elems}
}

func (t Tuple) String() string {
	if len(t.Elements) == 1 {
		return "(" + t.Elements[0].String() + ",)"
	}
	return "(" + joinStrings(t.Elements) + ")"
}

// Children returns the positional descriptors
func (t Tuple) Children() []Descriptor { return t.Elements }

// Record describes fixed-shape records: maps with exactly the given keys,
// each value matching its descriptor. Keys must be comparable.
type Record struct {
	Entries map[any]Descriptor
}

// RecordOf builds a record descriptor
func RecordOf(entries map[any]Descriptor) Record {
	return Record{Entries: entries}
}

// Keys returns the record keys sorted by (type name, repr)
func (r Record) Keys() []any {
	keys := make([]any, 0, len(r.Entries))
	for k := range r.Entries {
		keys = append(keys, k)
	}
	value.SortCanonical(keys)
	return keys
}

func (r Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(value.Repr(k))
		b.WriteString(": ")
		b.WriteString(r.Entries[k].String())
	}
	b.WriteByte('}')
	return b.String()
}

// Children returns the entry descriptors in canonical key order
func (r Record) Children() []Descriptor {
	keys := r.Keys()
	out := make([]Descriptor, len(keys))
	for i, k := range keys {
		out[i] = r.Entries[k]
	}
	return out
}

// OneOf describes values matching any of several alternatives. Declared
// order is significant: it fixes the branch index used when encoding.
type OneOf struct {
	Elements []Descriptor
}

func (o OneOf) String() string {
	return "one_of(" + joinStrings(o.Elements) + ")"
}

// Children returns the alternatives in declared order
func (o OneOf) Children() []Descriptor { return o.Elements }

// OneOfAll builds the union of ds. Nested unions are flattened, duplicates
// are dropped and a union of a single shape is that shape.
func OneOfAll(ds ...Descriptor) Descriptor {
	var flat []Descriptor
	seen := map[string]bool{}
	var add func(d Descriptor)
	add = func(d Descriptor) {
		if o, ok := d.(OneOf); ok {
			for _, e := range o.Elements {
				add(e)
			}
			return
		}
		fp := Fingerprint(d)
		if seen[fp] {
			return
		}
		seen[fp] = true
		flat = append(flat, d)
	}
	for _, d := range ds {
		add(d)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return OneOf{Elements: flat}
}

// SampledFrom describes values drawn from a fixed, ordered list of choices
type SampledFrom struct {
	Elements []any
}

// SampledFromValues builds a sampled_from descriptor
func SampledFromValues(elems ...any) SampledFrom {
	return SampledFrom{Elements: elems}
}

func (s SampledFrom) String() string {
	return "sampled_from(" + value.Repr(value.Tuple(s.Elements)) + ")"
}

// Children returns nil
func (s SampledFrom) Children() []Descriptor { return nil }

// Just describes exactly one constant value
type Just struct {
	Value any
}

// JustValue builds a just descriptor
func JustValue(v any) Just {
	return Just{Value: v}
}

func (j Just) String() string {
	return "just(" + value.Repr(j.Value) + ")"
}

// Children returns nil
func (j Just) Children() []Descriptor { return nil }

// Fingerprint renders the structure of d with type tags, independent of set
// and record iteration order. Two descriptors with equal fingerprints
// describe the same shape.
func Fingerprint(d Descriptor) string {
	var b strings.Builder
	writeFingerprint(&b, d)
	return b.String()
}

// Hash is the structural hash of d
func Hash(d Descriptor) uint64 {
	return xxhash.Sum64String(Fingerprint(d))
}

func writeFingerprint(b *strings.Builder, d Descriptor) {
	switch x := d.(type) {
	case nil:
		b.WriteString("nil")
	case Type:
		b.WriteString("T:")
		b.WriteString(string(x))
	case Named:
		b.WriteString("N:")
		b.WriteString(value.QuoteText(x.Name))
	case List:
		b.WriteString("L")
		writeFingerprints(b, x.Elements, false)
	case Set:
		if x.Frozen {
			b.WriteString("F")
		} else {
			b.WriteString("S")
		}
		writeFingerprints(b, x.Elements, true)
	case Tuple:
		b.WriteString("U")
		writeFingerprints(b, x.Elements, false)
	case OneOf:
		b.WriteString("O")
		writeFingerprints(b, x.Elements, false)
	case Record:
		b.WriteString("R{")
		for i, k := range x.Keys() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeTagged(b, k)
			b.WriteByte('=')
			writeFingerprint(b, x.Entries[k])
		}
		b.WriteByte('}')
	case SampledFrom:
		b.WriteString("M[")
		for i, e := range x.Elements {
			if i > 0 {
				b.WriteByte(',')
			}
			writeTagged(b, e)
		}
		b.WriteByte(']')
	case Just:
		b.WriteString("J(")
		writeTagged(b, x.Value)
		b.WriteByte(')')
	case Fingerprinter:
		b.WriteString("X:")
		b.WriteString(x.Fingerprint())
	default:
		b.WriteString("X:")
		b.WriteString(reflect.TypeOf(d).String())
		b.WriteByte(':')
		b.WriteString(d.String())
	}
}

func writeFingerprints(b *strings.Builder, ds []Descriptor, unordered bool) {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = Fingerprint(d)
	}
	if unordered {
		sort.Strings(parts)
		parts = dedupSorted(parts)
	}
	b.WriteByte('[')
	b.WriteString(strings.Join(parts, ","))
	b.WriteByte(']')
}

func writeTagged(b *strings.Builder, v any) {
	b.WriteString(value.TypeName(v))
	b.WriteByte(':')
	b.WriteString(value.Repr(v))
}

func joinStrings(ds []Descriptor) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

func dedupSorted(parts []string) []string {
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i == 0 || p != parts[i-1] {
			out = append(out, p)
		}
	}
	return out
}
