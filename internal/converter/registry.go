package converter

import (
	"fmt"
	"reflect"

	"github.com/listatree/hypothesis/internal/descriptor"
	"github.com/listatree/hypothesis/internal/specmap"
	"github.com/listatree/hypothesis/internal/strategy"
)

// Rule builds the converter for a descriptor. Composite rules call back
// into the registry to resolve their children.
type Rule func(r *Registry, d descriptor.Descriptor) (Converter, error)

// Registry resolves descriptors to converters: an exact rule first, then
// the first matching family rule, then PassThrough. Converters are memoized
// per structural fingerprint and shared by every caller.
type Registry struct {
	mapper     *specmap.Mapper[Converter]
	strategies *strategy.Table
}

// NewEmptyRegistry creates a registry with no rules, so every descriptor
// resolves to PassThrough until rules are defined. A nil strategy table is
// replaced by strategy.NewTable().
func NewEmptyRegistry(strategies *strategy.Table) *Registry {
	if strategies == nil {
		strategies = strategy.NewTable()
	}
	return &Registry{
		mapper: specmap.New[Converter](func(descriptor.Descriptor) (Converter, error) {
			return PassThrough, nil
		}),
		strategies: strategies,
	}
}

// NewRegistry creates a registry with the default rule set:
//
//	float, complex, text, binary, Random   exact leaf converters
//	list, set/frozenset, tuple, record     composite converters
//	one_of, sampled_from, just             union, enumeration, constant
//	anything else                          PassThrough
func NewRegistry(strategies *strategy.Table) *Registry {
	r := NewEmptyRegistry(strategies)

	r.DefineFor(descriptor.Float, constant(FloatConverter{}))
	r.DefineFor(descriptor.Complex, constant(ComplexConverter{}))
	r.DefineFor(descriptor.Text, constant(TextConverter{}))
	r.DefineFor(descriptor.Binary, constant(BinaryConverter{}))
	r.DefineFor(descriptor.Random, constant(RandomConverter{}))

	r.DefineForInstances(specmap.Family[descriptor.List](), defineList)
	r.DefineForInstances(specmap.Family[descriptor.Set](), defineCollection)
	r.DefineForInstances(specmap.Family[descriptor.Tuple](), defineTuple)
	r.DefineForInstances(specmap.Family[descriptor.Record](), defineRecord)
	r.DefineForInstances(specmap.Family[descriptor.OneOf](), defineOneOf)
	r.DefineForInstances(specmap.Family[descriptor.SampledFrom](), defineSampledFrom)
	r.DefineForInstances(specmap.Family[descriptor.Just](), defineJust)

	return r
}

// Strategies returns the strategy table the registry validates union
// branches with
func (r *Registry) Strategies() *strategy.Table {
	return r.strategies
}

// DefineFor registers a rule for one exact descriptor. Defining a rule
// drops the registry's memoized converters, but converters already handed
// out are not replaced.
func (r *Registry) DefineFor(d descriptor.Descriptor, rule Rule) {
	r.mapper.DefineFor(d, r.bind(rule))
}

// DefineForInstances registers a rule for every descriptor in family; see
// specmap.Family
func (r *Registry) DefineForInstances(family reflect.Type, rule Rule) {
	r.mapper.DefineForInstances(family, r.bind(rule))
}

// MarkNotSerializable makes resolution of d fail with ErrNotSerializable
// instead of falling back to PassThrough
func (r *Registry) MarkNotSerializable(d descriptor.Descriptor) {
	r.DefineFor(d, notSerializable)
}

// MarkNotSerializableInstances excludes a whole family from serialization
func (r *Registry) MarkNotSerializableInstances(family reflect.Type) {
	r.DefineForInstances(family, notSerializable)
}

// ConverterFor resolves the converter for d
func (r *Registry) ConverterFor(d descriptor.Descriptor) (Converter, error) {
	return r.mapper.SpecificationFor(d)
}

func (r *Registry) bind(rule Rule) specmap.Rule[Converter] {
	return func(d descriptor.Descriptor) (Converter, error) {
		return rule(r, d)
	}
}

func (r *Registry) children(ds []descriptor.Descriptor) ([]Converter, error) {
	out := make([]Converter, len(ds))
	for i, d := range ds {
		c, err := r.ConverterFor(d)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func constant(c Converter) Rule {
	return func(*Registry, descriptor.Descriptor) (Converter, error) {
		return c, nil
	}
}

func notSerializable(_ *Registry, d descriptor.Descriptor) (Converter, error) {
	return nil, &NotSerializableError{Descriptor: d.String()}
}

// defineList collapses to PassThrough when the elements need no conversion
func defineList(r *Registry, d descriptor.Descriptor) (Converter, error) {
	element, err := r.ConverterFor(descriptor.OneOfAll(d.Children()...))
	if err != nil {
		return nil, err
	}
	if _, ok := element.(passThrough); ok {
		return PassThrough, nil
	}
	return ListConverter{Element: element}, nil
}

func defineCollection(r *Registry, d descriptor.Descriptor) (Converter, error) {
	set := d.(descriptor.Set)
	list, err := r.ConverterFor(descriptor.List{Elements: set.CanonicalElements()})
	if err != nil {
		return nil, err
	}
	return CollectionConverter{List: list, Frozen: set.Frozen}, nil
}

func defineTuple(r *Registry, d descriptor.Descriptor) (Converter, error) {
	elems, err := r.children(d.Children())
	if err != nil {
		return nil, err
	}
	return TupleConverter{Elements: elems}, nil
}

func defineRecord(r *Registry, d descriptor.Descriptor) (Converter, error) {
	rec := d.(descriptor.Record)
	entries := make(map[any]Converter, len(rec.Entries))
	for k, child := range rec.Entries {
		c, err := r.ConverterFor(child)
		if err != nil {
			return nil, err
		}
		entries[k] = c
	}
	return NewRecordConverter(entries), nil
}

func defineOneOf(r *Registry, d descriptor.Descriptor) (Converter, error) {
	alternatives := d.Children()
	convs, err := r.children(alternatives)
	if err != nil {
		return nil, err
	}
	strategies := make([]strategy.Strategy, len(alternatives))
	for i, alt := range alternatives {
		s, err := r.strategies.StrategyFor(alt)
		if err != nil {
			return nil, fmt.Errorf("resolving strategy for %s: %w", alt, err)
		}
		strategies[i] = s
	}
	return OneOfConverter{Alternatives: convs, Strategies: strategies}, nil
}

func defineSampledFrom(_ *Registry, d descriptor.Descriptor) (Converter, error) {
	choices := d.(descriptor.SampledFrom).Elements
	return SampledFromConverter{Choices: append([]any(nil), choices...)}, nil
}

func defineJust(_ *Registry, d descriptor.Descriptor) (Converter, error) {
	return JustConverter{Value: d.(descriptor.Just).Value}, nil
}
