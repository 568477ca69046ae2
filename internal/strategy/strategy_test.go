package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listatree/hypothesis/internal/descriptor"
	"github.com/listatree/hypothesis/internal/specmap"
	"github.com/listatree/hypothesis/internal/value"
)

func TestCouldHaveProduced(t *testing.T) {
	record := descriptor.RecordOf(map[any]descriptor.Descriptor{"a": descriptor.Int, "b": descriptor.Text})

	tests := []struct {
		name string
		d    descriptor.Descriptor
		v    any
		want bool
	}{
		{"int", descriptor.Int, int64(3), true},
		{"int from uint", descriptor.Int, uint8(3), true},
		{"int rejects float", descriptor.Int, 3.0, false},
		{"int rejects bool", descriptor.Int, true, false},
		{"float", descriptor.Float, math.NaN(), true},
		{"float rejects int", descriptor.Float, 1, false},
		{"complex", descriptor.Complex, complex(1, 1), true},
		{"text", descriptor.Text, "x", true},
		{"binary", descriptor.Binary, []byte("x"), true},
		{"binary rejects text", descriptor.Binary, "x", false},
		{"bool", descriptor.Bool, false, true},
		{"random", descriptor.Random, value.NewRandom(1), true},
		{"list", descriptor.ListOf(descriptor.Int), []any{1, 2}, true},
		{"list rejects member", descriptor.ListOf(descriptor.Int), []any{1, "2"}, false},
		{"list of union", descriptor.ListOf(descriptor.Int, descriptor.Text), []any{1, "2"}, true},
		{"empty list shape", descriptor.ListOf(), []any{}, true},
		{"empty list shape rejects members", descriptor.ListOf(), []any{1}, false},
		{"list rejects tuple", descriptor.ListOf(descriptor.Int), value.Tuple{1}, false},
		{"set", descriptor.SetOf(descriptor.Int), value.NewSet(1, 2), true},
		{"set rejects frozenset", descriptor.SetOf(descriptor.Int), value.NewFrozenSet(1), false},
		{"frozenset", descriptor.FrozenSetOf(descriptor.Int), value.NewFrozenSet(1), true},
		{"tuple", descriptor.TupleOf(descriptor.Int, descriptor.Text), value.Tuple{1, "a"}, true},
		{"tuple arity", descriptor.TupleOf(descriptor.Int), value.Tuple{1, 2}, false},
		{"record", record, map[any]any{"a": 1, "b": "x"}, true},
		{"record missing key", record, map[any]any{"a": 1}, false},
		{"record extra key", record, map[any]any{"a": 1, "b": "x", "c": 2}, false},
		{"one_of", descriptor.OneOf{Elements: []descriptor.Descriptor{descriptor.Int, descriptor.Text}}, "x", true},
		{"one_of rejects", descriptor.OneOf{Elements: []descriptor.Descriptor{descriptor.Int, descriptor.Text}}, 1.5, false},
		{"sampled_from", descriptor.SampledFromValues("x", "y"), "y", true},
		{"sampled_from rejects", descriptor.SampledFromValues("x", "y"), "z", false},
		{"just", descriptor.JustValue(nil), nil, true},
		{"just rejects", descriptor.JustValue(nil), 0, false},
	}

	table := NewTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := table.StrategyFor(tt.d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.CouldHaveProduced(tt.v))
		})
	}
}

func TestNamedNeedsRule(t *testing.T) {
	table := NewTable()

	_, err := table.StrategyFor(descriptor.Named{Name: "Widget"})
	assert.ErrorIs(t, err, specmap.ErrMissingSpecification)

	_, err = table.StrategyFor(descriptor.ListOf(descriptor.Named{Name: "Widget"}))
	assert.ErrorIs(t, err, specmap.ErrMissingSpecification)

	table.DefineFor(descriptor.Named{Name: "Widget"}, func(*Table, descriptor.Descriptor) (Strategy, error) {
		return Func(func(v any) bool { return v == "widget" }), nil
	})

	s, err := table.StrategyFor(descriptor.ListOf(descriptor.Named{Name: "Widget"}))
	require.NoError(t, err)
	assert.True(t, s.CouldHaveProduced([]any{"widget"}))
	assert.False(t, s.CouldHaveProduced([]any{"gadget"}))
}

func TestEmptyTable(t *testing.T) {
	_, err := NewEmptyTable().StrategyFor(descriptor.Int)
	assert.ErrorIs(t, err, specmap.ErrMissingSpecification)
}
