package descriptor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want string
	}{
		{"primitive", Int, "int"},
		{"named", Named{Name: "Widget"}, "Widget"},
		{"list", ListOf(Int, Text), "[int, text]"},
		{"empty list", ListOf(), "[]"},
		{"set sorted", SetOf(Text, Int), "{int, text}"},
		{"set deduplicated", SetOf(Int, Int), "{int}"},
		{"empty set", SetOf(), "set()"},
		{"frozenset", FrozenSetOf(Bool), "frozenset({bool})"},
		{"empty frozenset", FrozenSetOf(), "frozenset()"},
		{"singleton tuple", TupleOf(Int), "(int,)"},
		{"tuple", TupleOf(Int, Float), "(int, float)"},
		{"empty tuple", TupleOf(), "()"},
		{"record", RecordOf(map[any]Descriptor{"b": Int, "a": Text}), "{'a': text, 'b': int}"},
		{"one_of", OneOf{Elements: []Descriptor{Int, Text}}, "one_of(int, text)"},
		{"sampled_from", SampledFromValues("x", "y"), "sampled_from(('x', 'y'))"},
		{"sampled_from single", SampledFromValues(1), "sampled_from((1,))"},
		{"just", JustValue(nil), "just(None)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestFingerprintIgnoresConstructionOrder(t *testing.T) {
	a := map[any]Descriptor{}
	a["b"] = Int
	a["a"] = ListOf(Text)
	b := map[any]Descriptor{}
	b["a"] = ListOf(Text)
	b["b"] = Int

	assert.Equal(t, Fingerprint(RecordOf(a)), Fingerprint(RecordOf(b)))
	assert.Equal(t, Hash(RecordOf(a)), Hash(RecordOf(b)))

	assert.Equal(t, Fingerprint(SetOf(Int, Text)), Fingerprint(SetOf(Text, Int)))
	assert.Equal(t, Hash(SetOf(Int, Text)), Hash(SetOf(Text, Int)))
}

func TestSetCanonicalElements(t *testing.T) {
	want := []Descriptor{Int, Text}

	assert.Equal(t, want, SetOf(Int, Text).CanonicalElements())
	assert.Equal(t, want, SetOf(Text, Int, Text).CanonicalElements())
	assert.Equal(t, want, FrozenSetOf(Text, Int).Children())
	assert.Empty(t, SetOf().CanonicalElements())
}

func TestFingerprintDistinguishesShapes(t *testing.T) {
	shapes := []Descriptor{
		Int,
		Named{Name: "int"},
		ListOf(Int),
		SetOf(Int),
		FrozenSetOf(Int),
		TupleOf(Int),
		OneOf{Elements: []Descriptor{Int, Text}},
		OneOf{Elements: []Descriptor{Text, Int}},
		RecordOf(map[any]Descriptor{"a": Int}),
		RecordOf(map[any]Descriptor{int64(1): Int}),
		SampledFromValues(1),
		SampledFromValues("1"),
		JustValue(1),
		JustValue(1.0),
	}

	seen := map[string]string{}
	for _, d := range shapes {
		fp := Fingerprint(d)
		if other, dup := seen[fp]; dup {
			t.Errorf("%s and %s share fingerprint %s", d, other, fp)
		}
		seen[fp] = d.String()
	}
}

func TestHashEqualForIndependentInstances(t *testing.T) {
	a := ListOf(TupleOf(Int, Text))
	b := ListOf(TupleOf(Int, Text))
	assert.Equal(t, Hash(a), Hash(b))
	assert.NotEqual(t, Hash(a), Hash(ListOf(TupleOf(Text, Int))))
}

type customDescriptor struct{ id int }

func (c customDescriptor) String() string         { return "custom" }
func (c customDescriptor) Children() []Descriptor { return nil }
func (c customDescriptor) Fingerprint() string    { return fmt.Sprintf("custom-%d", c.id) }

func TestFingerprinterOverridesDefault(t *testing.T) {
	assert.NotEqual(t, Fingerprint(customDescriptor{1}), Fingerprint(customDescriptor{2}))
	assert.Equal(t, "X:custom-1", Fingerprint(customDescriptor{1}))
}

func TestOneOfAll(t *testing.T) {
	t.Run("single shape unwraps", func(t *testing.T) {
		assert.Equal(t, Int, OneOfAll(Int))
		assert.Equal(t, Int, OneOfAll(Int, Int))
	})

	t.Run("flattens nested unions", func(t *testing.T) {
		d := OneOfAll(Int, OneOf{Elements: []Descriptor{Text, Int}}, Bool)
		require.IsType(t, OneOf{}, d)
		assert.Equal(t, "one_of(int, text, bool)", d.String())
	})

	t.Run("keeps first occurrence order", func(t *testing.T) {
		d := OneOfAll(Text, Int, Text)
		assert.Equal(t, "one_of(text, int)", d.String())
	})
}

func TestRecordKeysCanonical(t *testing.T) {
	r := RecordOf(map[any]Descriptor{"b": Int, int64(3): Text, "a": Bool})
	// int sorts before str
	assert.Equal(t, []any{int64(3), "a", "b"}, r.Keys())
	assert.Equal(t, []Descriptor{Text, Bool, Int}, r.Children())
}

func TestParseRoundTrip(t *testing.T) {
	shapes := []Descriptor{
		Int, Float, Text, Binary, Bool, Complex, Random,
		Named{Name: "Widget"},
		ListOf(Int),
		ListOf(Int, Text),
		ListOf(),
		SetOf(Int),
		SetOf(),
		FrozenSetOf(Text, Int),
		FrozenSetOf(),
		TupleOf(),
		TupleOf(Int),
		TupleOf(Int, ListOf(Float)),
		RecordOf(map[any]Descriptor{"a": Int, "b": TupleOf(Text)}),
		RecordOf(map[any]Descriptor{int64(1): Bool, true: Text}),
		RecordOf(map[any]Descriptor{}),
		OneOf{Elements: []Descriptor{Int, ListOf(Text)}},
		SampledFromValues("x", "y", "z"),
		SampledFromValues(int64(1)),
		JustValue(nil),
		JustValue("const"),
	}

	for _, d := range shapes {
		t.Run(d.String(), func(t *testing.T) {
			parsed, err := Parse(d.String())
			require.NoError(t, err)
			assert.Equal(t, Fingerprint(d), Fingerprint(parsed))
			assert.Equal(t, d.String(), parsed.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"[int",
		"one_of(int",
		"sampled_from(1)",
		"{'a' int}",
		"set(int)",
		"int int",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}
