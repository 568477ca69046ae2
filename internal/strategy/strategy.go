// Package strategy answers whether a value could have been produced for a
// descriptor. It carries only the validation side of a search strategy; the
// example database never generates values.
package strategy

import (
	"fmt"
	"reflect"

	"github.com/listatree/hypothesis/internal/descriptor"
	"github.com/listatree/hypothesis/internal/specmap"
	"github.com/listatree/hypothesis/internal/value"
)

// Strategy validates values against the shape it was built for
type Strategy interface {
	CouldHaveProduced(v any) bool
}

// Func adapts a predicate to the Strategy interface
type Func func(v any) bool

// CouldHaveProduced calls f
func (f Func) CouldHaveProduced(v any) bool {
	return f(v)
}

// Rule builds the strategy for a descriptor. Composite rules use the table
// to resolve their children.
type Rule func(t *Table, d descriptor.Descriptor) (Strategy, error)

// Table maps descriptors to strategies
type Table struct {
	mapper *specmap.Mapper[Strategy]
}

// NewEmptyTable creates a table with no rules; every lookup fails with
// specmap.ErrMissingSpecification until rules are defined.
func NewEmptyTable() *Table {
	return &Table{mapper: specmap.New[Strategy](nil)}
}

// NewTable creates a table with strategies for every built-in descriptor
// variant. Named descriptors need an explicit rule.
func NewTable() *Table {
	t := NewEmptyTable()

	t.DefineFor(descriptor.Int, constant(Func(value.IsInteger)))
	t.DefineFor(descriptor.Float, constant(Func(func(v any) bool {
		switch v.(type) {
		case float32, float64:
			return true
		}
		return false
	})))
	t.DefineFor(descriptor.Complex, constant(Func(func(v any) bool {
		switch v.(type) {
		case complex64, complex128:
			return true
		}
		return false
	})))
	t.DefineFor(descriptor.Text, constant(ofType[string]()))
	t.DefineFor(descriptor.Binary, constant(ofType[[]byte]()))
	t.DefineFor(descriptor.Bool, constant(ofType[bool]()))
	t.DefineFor(descriptor.Random, constant(ofType[*value.Random]()))

	t.DefineForInstances(specmap.Family[descriptor.List](), defineList)
	t.DefineForInstances(specmap.Family[descriptor.Set](), defineSet)
	t.DefineForInstances(specmap.Family[descriptor.Tuple](), defineTuple)
	t.DefineForInstances(specmap.Family[descriptor.Record](), defineRecord)
	t.DefineForInstances(specmap.Family[descriptor.OneOf](), defineOneOf)
	t.DefineForInstances(specmap.Family[descriptor.SampledFrom](), defineSampledFrom)
	t.DefineForInstances(specmap.Family[descriptor.Just](), defineJust)

	return t
}

// DefineFor registers a rule for one exact descriptor
func (t *Table) DefineFor(d descriptor.Descriptor, rule Rule) {
	t.mapper.DefineFor(d, t.bind(rule))
}

// DefineForInstances registers a rule for a family of descriptors
func (t *Table) DefineForInstances(family reflect.Type, rule Rule) {
	t.mapper.DefineForInstances(family, t.bind(rule))
}

func (t *Table) bind(rule Rule) specmap.Rule[Strategy] {
	return func(d descriptor.Descriptor) (Strategy, error) {
		return rule(t, d)
	}
}

// StrategyFor resolves the strategy for d
func (t *Table) StrategyFor(d descriptor.Descriptor) (Strategy, error) {
	return t.mapper.SpecificationFor(d)
}

func constant(s Strategy) Rule {
	return func(*Table, descriptor.Descriptor) (Strategy, error) {
		return s, nil
	}
}

func ofType[V any]() Strategy {
	return Func(func(v any) bool {
		_, ok := v.(V)
		return ok
	})
}

func (t *Table) all(ds []descriptor.Descriptor) ([]Strategy, error) {
	out := make([]Strategy, len(ds))
	for i, d := range ds {
		s, err := t.StrategyFor(d)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", d, err)
		}
		out[i] = s
	}
	return out, nil
}

// elementStrategy validates members of a list or set built from elems
func (t *Table) elementStrategy(elems []descriptor.Descriptor) (Strategy, error) {
	if len(elems) == 0 {
		return Func(func(any) bool { return false }), nil
	}
	return t.StrategyFor(descriptor.OneOfAll(elems...))
}

func defineList(t *Table, d descriptor.Descriptor) (Strategy, error) {
	elem, err := t.elementStrategy(d.Children())
	if err != nil {
		return nil, err
	}
	return Func(func(v any) bool {
		xs, ok := v.([]any)
		if !ok {
			return false
		}
		for _, x := range xs {
			if !elem.CouldHaveProduced(x) {
				return false
			}
		}
		return true
	}), nil
}

func defineSet(t *Table, d descriptor.Descriptor) (Strategy, error) {
	set := d.(descriptor.Set)
	elem, err := t.elementStrategy(set.CanonicalElements())
	if err != nil {
		return nil, err
	}
	return Func(func(v any) bool {
		s, ok := v.(*value.Set)
		if !ok || s.Frozen() != set.Frozen {
			return false
		}
		for _, x := range s.Elements() {
			if !elem.CouldHaveProduced(x) {
				return false
			}
		}
		return true
	}), nil
}

func defineTuple(t *Table, d descriptor.Descriptor) (Strategy, error) {
	positions, err := t.all(d.Children())
	if err != nil {
		return nil, err
	}
	return Func(func(v any) bool {
		tup, ok := v.(value.Tuple)
		if !ok || len(tup) != len(positions) {
			return false
		}
		for i, s := range positions {
			if !s.CouldHaveProduced(tup[i]) {
				return false
			}
		}
		return true
	}), nil
}

func defineRecord(t *Table, d descriptor.Descriptor) (Strategy, error) {
	rec := d.(descriptor.Record)
	keys := rec.Keys()
	entries, err := t.all(rec.Children())
	if err != nil {
		return nil, err
	}
	return Func(func(v any) bool {
		m, ok := v.(map[any]any)
		if !ok || len(m) != len(keys) {
			return false
		}
		for i, k := range keys {
			x, found := value.Lookup(m, k)
			if !found || !entries[i].CouldHaveProduced(x) {
				return false
			}
		}
		return true
	}), nil
}

func defineOneOf(t *Table, d descriptor.Descriptor) (Strategy, error) {
	alternatives, err := t.all(d.Children())
	if err != nil {
		return nil, err
	}
	return Func(func(v any) bool {
		for _, s := range alternatives {
			if s.CouldHaveProduced(v) {
				return true
			}
		}
		return false
	}), nil
}

func defineSampledFrom(_ *Table, d descriptor.Descriptor) (Strategy, error) {
	choices := d.(descriptor.SampledFrom).Elements
	return Func(func(v any) bool {
		for _, c := range choices {
			if value.Equal(c, v) {
				return true
			}
		}
		return false
	}), nil
}

func defineJust(_ *Table, d descriptor.Descriptor) (Strategy, error) {
	want := d.(descriptor.Just).Value
	return Func(func(v any) bool {
		return value.Equal(want, v)
	}), nil
}
