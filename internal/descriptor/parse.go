package descriptor

import (
	"reflect"

	"github.com/listatree/hypothesis/internal/value"
)

// Parse reads a descriptor from its display string. Any identifier that is
// not a primitive or a known constructor parses as a Named leaf.
func Parse(src string) (Descriptor, error) {
	p := value.NewParser(src)
	d, err := parse(p)
	if err != nil {
		return nil, err
	}
	if err := p.End(); err != nil {
		return nil, err
	}
	return d, nil
}

func parse(p *value.Parser) (Descriptor, error) {
	switch p.Peek() {
	case 0:
		return nil, p.Errorf("unexpected end of input")
	case '[':
		p.Accept('[')
		elems, err := parseList(p, ']')
		if err != nil {
			return nil, err
		}
		return List{Elements: elems}, nil
	case '(':
		p.Accept('(')
		elems, err := parseList(p, ')')
		if err != nil {
			return nil, err
		}
		return Tuple{Elements: elems}, nil
	case '{':
		p.Accept('{')
		if p.Accept('}') {
			return Record{Entries: map[any]Descriptor{}}, nil
		}
		if p.StartsLiteral() {
			return parseRecord(p)
		}
		elems, err := parseList(p, '}')
		if err != nil {
			return nil, err
		}
		return Set{Elements: elems}, nil
	}

	id, err := p.Ident()
	if err != nil {
		return nil, err
	}
	switch id {
	case "set":
		if err := p.Expect('('); err != nil {
			return nil, err
		}
		if err := p.Expect(')'); err != nil {
			return nil, err
		}
		return Set{}, nil
	case "frozenset":
		if err := p.Expect('('); err != nil {
			return nil, err
		}
		if p.Accept(')') {
			return Set{Frozen: true}, nil
		}
		if err := p.Expect('{'); err != nil {
			return nil, err
		}
		elems, err := parseList(p, '}')
		if err != nil {
			return nil, err
		}
		if err := p.Expect(')'); err != nil {
			return nil, err
		}
		return Set{Elements: elems, Frozen: true}, nil
	case "one_of":
		if err := p.Expect('('); err != nil {
			return nil, err
		}
		elems, err := parseList(p, ')')
		if err != nil {
			return nil, err
		}
		return OneOf{Elements: elems}, nil
	case "sampled_from":
		if err := p.Expect('('); err != nil {
			return nil, err
		}
		lit, err := p.Literal()
		if err != nil {
			return nil, err
		}
		if err := p.Expect(')'); err != nil {
			return nil, err
		}
		switch x := lit.(type) {
		case value.Tuple:
			return SampledFrom{Elements: []any(x)}, nil
		case []any:
			return SampledFrom{Elements: x}, nil
		}
		return nil, p.Errorf("sampled_from takes a tuple of choices")
	case "just":
		if err := p.Expect('('); err != nil {
			return nil, err
		}
		lit, err := p.Literal()
		if err != nil {
			return nil, err
		}
		if err := p.Expect(')'); err != nil {
			return nil, err
		}
		return Just{Value: lit}, nil
	}

	for _, t := range Primitives {
		if string(t) == id {
			return t, nil
		}
	}
	return Named{Name: id}, nil
}

// parseList reads comma separated descriptors up to closer. A trailing
// comma is allowed, which is how single-element tuples are written.
func parseList(p *value.Parser, closer rune) ([]Descriptor, error) {
	var out []Descriptor
	if p.Accept(closer) {
		return out, nil
	}
	for {
		d, err := parse(p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
		if p.Accept(closer) {
			return out, nil
		}
		if err := p.Expect(','); err != nil {
			return nil, err
		}
		if p.Accept(closer) {
			return out, nil
		}
	}
}

func parseRecord(p *value.Parser) (Descriptor, error) {
	entries := map[any]Descriptor{}
	for {
		key, err := p.Literal()
		if err != nil {
			return nil, err
		}
		if key != nil && !reflect.TypeOf(key).Comparable() {
			return nil, p.Errorf("record key %s is not hashable", value.Repr(key))
		}
		if err := p.Expect(':'); err != nil {
			return nil, err
		}
		d, err := parse(p)
		if err != nil {
			return nil, err
		}
		entries[key] = d
		if p.Accept('}') {
			return Record{Entries: entries}, nil
		}
		if err := p.Expect(','); err != nil {
			return nil, err
		}
		if p.Accept('}') {
			return Record{Entries: entries}, nil
		}
	}
}
