// Package specmap provides a descriptor-directed dispatch table. A Mapper
// resolves a descriptor to a specification of type T by consulting, in
// order, a rule registered for that exact descriptor, the first family rule
// (in registration order) whose family the descriptor belongs to, and
// finally a fallback. Resolved specifications are memoized per structural
// fingerprint, so equal descriptors built independently share one result.
package specmap

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/listatree/hypothesis/internal/descriptor"
)

// ErrMissingSpecification is returned when no rule matches and the mapper
// has no fallback
var ErrMissingSpecification = errors.New("missing specification")

// MissingSpecificationError names the descriptor that could not be resolved
type MissingSpecificationError struct {
	Descriptor string
}

func (e *MissingSpecificationError) Error() string {
	return fmt.Sprintf("no specification defined for %s", e.Descriptor)
}

// Is matches ErrMissingSpecification
func (e *MissingSpecificationError) Is(target error) bool {
	return target == ErrMissingSpecification
}

// Rule builds the specification for a descriptor
type Rule[T any] func(d descriptor.Descriptor) (T, error)

type familyRule[T any] struct {
	family reflect.Type
	rule   Rule[T]
}

// Mapper is a three-tier dispatch table with a memoization cache. It is
// safe for concurrent use.
type Mapper[T any] struct {
	mu       sync.RWMutex
	exact    map[string]Rule[T]
	families []familyRule[T]
	fallback Rule[T]
	cache    map[string]T
}

// New creates an empty mapper. A nil fallback makes unmatched descriptors
// fail with ErrMissingSpecification.
func New[T any](fallback Rule[T]) *Mapper[T] {
	return &Mapper[T]{
		exact:    make(map[string]Rule[T]),
		fallback: fallback,
		cache:    make(map[string]T),
	}
}

// Family returns the family type for descriptors of type D. When D is an
// interface, every descriptor implementing it belongs to the family.
func Family[D any]() reflect.Type {
	return reflect.TypeFor[D]()
}

// DefineFor registers a rule for one exact descriptor, identified by its
// structural fingerprint. It replaces any previous exact rule for it.
func (m *Mapper[T]) DefineFor(d descriptor.Descriptor, rule Rule[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exact[descriptor.Fingerprint(d)] = rule
	m.invalidate()
}

// DefineForInstances registers a rule for every descriptor in family.
// Earlier registrations take precedence over later ones.
func (m *Mapper[T]) DefineForInstances(family reflect.Type, rule Rule[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.families = append(m.families, familyRule[T]{family: family, rule: rule})
	m.invalidate()
}

// invalidate drops memoized results; it must be called with mu held
func (m *Mapper[T]) invalidate() {
	if len(m.cache) > 0 {
		m.cache = make(map[string]T)
	}
}

// SpecificationFor resolves d, building and memoizing its specification on
// first use. Rules run without the lock held so they may resolve nested
// descriptors; when two callers race, the first stored result wins and both
// receive it.
func (m *Mapper[T]) SpecificationFor(d descriptor.Descriptor) (T, error) {
	fp := descriptor.Fingerprint(d)

	m.mu.RLock()
	if spec, ok := m.cache[fp]; ok {
		m.mu.RUnlock()
		return spec, nil
	}
	rule := m.lookup(fp, d)
	m.mu.RUnlock()

	var zero T
	if rule == nil {
		return zero, &MissingSpecificationError{Descriptor: displayString(d)}
	}

	spec, err := rule(d)
	if err != nil {
		return zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.cache[fp]; ok {
		return existing, nil
	}
	m.cache[fp] = spec
	return spec, nil
}

// lookup finds the rule for d; it must be called with mu held
func (m *Mapper[T]) lookup(fp string, d descriptor.Descriptor) Rule[T] {
	if rule, ok := m.exact[fp]; ok {
		return rule
	}
	if d != nil {
		t := reflect.TypeOf(d)
		for _, f := range m.families {
			if t == f.family || (f.family.Kind() == reflect.Interface && t.Implements(f.family)) {
				return f.rule
			}
		}
	}
	return m.fallback
}

// Cached reports how many specifications are memoized
func (m *Mapper[T]) Cached() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

func displayString(d descriptor.Descriptor) string {
	if d == nil {
		return "<nil>"
	}
	return d.String()
}
