package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads a value literal in the syntax produced by Repr
func Parse(src string) (any, error) {
	p := NewParser(src)
	v, err := p.Literal()
	if err != nil {
		return nil, err
	}
	if err := p.End(); err != nil {
		return nil, err
	}
	return v, nil
}

// Parser is a small recursive-descent reader over Repr-style text. It is
// exported so descriptor syntax, which embeds value literals, can share it.
type Parser struct {
	src []rune
	pos int
}

// NewParser creates a parser positioned at the start of src
func NewParser(src string) *Parser {
	return &Parser{src: []rune(src)}
}

// Errorf builds a syntax error annotated with the current offset
func (p *Parser) Errorf(format string, args ...any) error {
	return fmt.Errorf("syntax error at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

// SkipSpace advances past whitespace
func (p *Parser) SkipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

// Peek returns the next non-space rune without consuming it, or 0 at the end
func (p *Parser) Peek() rune {
	p.SkipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// Accept consumes r if it is the next non-space rune
func (p *Parser) Accept(r rune) bool {
	if p.Peek() == r {
		p.pos++
		return true
	}
	return false
}

// Expect consumes r or fails
func (p *Parser) Expect(r rune) error {
	if !p.Accept(r) {
		if p.pos >= len(p.src) {
			return p.Errorf("expected %q, got end of input", r)
		}
		return p.Errorf("expected %q, got %q", r, p.src[p.pos])
	}
	return nil
}

// End fails unless only whitespace remains
func (p *Parser) End() error {
	if p.Peek() != 0 {
		return p.Errorf("unexpected trailing input %q", string(p.src[p.pos:]))
	}
	return nil
}

// PeekIdent returns the identifier starting at the next non-space rune
// without consuming it
func (p *Parser) PeekIdent() string {
	p.SkipSpace()
	end := p.pos
	for end < len(p.src) && isIdentRune(p.src[end], end == p.pos) {
		end++
	}
	return string(p.src[p.pos:end])
}

// Ident consumes and returns an identifier
func (p *Parser) Ident() (string, error) {
	id := p.PeekIdent()
	if id == "" {
		return "", p.Errorf("expected identifier")
	}
	p.pos += len([]rune(id))
	return id, nil
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}

// StartsLiteral reports whether the next token opens a scalar literal
func (p *Parser) StartsLiteral() bool {
	r := p.Peek()
	switch {
	case r == '\'' || r == '"' || r == '-' || r == '+' || unicode.IsDigit(r):
		return true
	case r == 'b' && p.pos+1 < len(p.src) && (p.src[p.pos+1] == '\'' || p.src[p.pos+1] == '"'):
		return true
	}
	switch p.PeekIdent() {
	case "True", "False", "None", "nan", "inf":
		return true
	}
	return false
}

// Literal reads any value literal
func (p *Parser) Literal() (any, error) {
	r := p.Peek()
	switch {
	case r == 0:
		return nil, p.Errorf("unexpected end of input")
	case r == '\'' || r == '"':
		return p.text(false)
	case r == 'b' && p.pos+1 < len(p.src) && (p.src[p.pos+1] == '\'' || p.src[p.pos+1] == '"'):
		p.pos++
		s, err := p.text(true)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	case r == '-' || r == '+' || unicode.IsDigit(r):
		return p.number()
	case r == '(':
		return p.tupleOrComplex()
	case r == '[':
		p.pos++
		items, err := p.items(']')
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []any{}
		}
		return items, nil
	case r == '{':
		return p.setOrDict()
	}

	id, err := p.Ident()
	if err != nil {
		return nil, p.Errorf("unexpected %q", r)
	}
	switch id {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	case "nan":
		return math.NaN(), nil
	case "inf":
		return math.Inf(1), nil
	case "set", "frozenset":
		return p.setCall(id == "frozenset")
	case "Random":
		return p.random()
	}
	return nil, p.Errorf("unknown literal %q", id)
}

func (p *Parser) items(closer rune) ([]any, error) {
	var out []any
	if p.Accept(closer) {
		return out, nil
	}
	for {
		v, err := p.Literal()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
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

func (p *Parser) tupleOrComplex() (any, error) {
	p.pos++
	if p.Accept(')') {
		return Tuple{}, nil
	}
	first, err := p.Literal()
	if err != nil {
		return nil, err
	}
	if r := p.Peek(); r == '+' || r == '-' {
		re, ok := toFloat(first)
		if !ok {
			return nil, p.Errorf("complex literal needs a numeric real part")
		}
		im, err := p.number()
		if err != nil {
			return nil, err
		}
		c, ok := im.(complex128)
		if !ok {
			return nil, p.Errorf("complex literal needs an imaginary part ending in j")
		}
		if err := p.Expect(')'); err != nil {
			return nil, err
		}
		return complex(re, imag(c)), nil
	}
	if p.Accept(')') {
		if c, ok := first.(complex128); ok {
			return c, nil
		}
		return nil, p.Errorf("parenthesised value must be a tuple; add a trailing comma")
	}
	if err := p.Expect(','); err != nil {
		return nil, err
	}
	rest, err := p.items(')')
	if err != nil {
		return nil, err
	}
	return append(Tuple{first}, rest...), nil
}

func (p *Parser) setOrDict() (any, error) {
	p.pos++
	if p.Accept('}') {
		return map[any]any{}, nil
	}
	first, err := p.Literal()
	if err != nil {
		return nil, err
	}
	if !p.Accept(':') {
		elems := []any{first}
		if !p.Accept('}') {
			if err := p.Expect(','); err != nil {
				return nil, err
			}
			rest, err := p.items('}')
			if err != nil {
				return nil, err
			}
			elems = append(elems, rest...)
		}
		return NewSet(elems...), nil
	}

	out := map[any]any{}
	key := first
	for {
		if !isComparable(key) {
			return nil, p.Errorf("record key %s is not hashable", Repr(key))
		}
		v, err := p.Literal()
		if err != nil {
			return nil, err
		}
		out[key] = v
		if p.Accept('}') {
			return out, nil
		}
		if err := p.Expect(','); err != nil {
			return nil, err
		}
		if p.Accept('}') {
			return out, nil
		}
		if key, err = p.Literal(); err != nil {
			return nil, err
		}
		if err := p.Expect(':'); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) setCall(frozen bool) (any, error) {
	if err := p.Expect('('); err != nil {
		return nil, err
	}
	if p.Accept(')') {
		return NewSetOfKind(frozen), nil
	}
	inner, err := p.Literal()
	if err != nil {
		return nil, err
	}
	if err := p.Expect(')'); err != nil {
		return nil, err
	}
	switch x := inner.(type) {
	case *Set:
		return NewSetOfKind(frozen, x.elems...), nil
	case []any:
		return NewSetOfKind(frozen, x...), nil
	case Tuple:
		return NewSetOfKind(frozen, x...), nil
	}
	return nil, p.Errorf("set() takes a collection, got %s", Repr(inner))
}

func (p *Parser) random() (any, error) {
	if err := p.Expect('('); err != nil {
		return nil, err
	}
	if p.PeekIdent() == "seed" {
		p.pos += len("seed")
		if err := p.Expect('='); err != nil {
			return nil, err
		}
	}
	seed, err := p.number()
	if err != nil {
		return nil, err
	}
	s, ok := seed.(int64)
	if !ok {
		return nil, p.Errorf("Random seed must be an integer")
	}
	if err := p.Expect(')'); err != nil {
		return nil, err
	}
	return NewRandom(s), nil
}

func (p *Parser) number() (any, error) {
	p.SkipSpace()
	start := p.pos
	if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
		p.pos++
	}
	if id := p.PeekIdent(); strings.HasPrefix(id, "inf") || strings.HasPrefix(id, "nan") {
		p.pos += 3
		f := math.Inf(1)
		if strings.HasPrefix(id, "nan") {
			f = math.NaN()
		} else if p.src[start] == '-' {
			f = math.Inf(-1)
		}
		return p.imaginary(f), nil
	}
	isFloat := false
scan:
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		switch {
		case unicode.IsDigit(r):
		case r == '.' || r == 'e' || r == 'E':
			isFloat = true
		case (r == '-' || r == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E'):
		default:
			break scan
		}
		p.pos++
	}
	text := string(p.src[start:p.pos])
	if text == "" || text == "-" || text == "+" {
		return nil, p.Errorf("expected number")
	}
	if !isFloat && (p.pos >= len(p.src) || p.src[p.pos] != 'j') {
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, p.Errorf("invalid integer %q", text)
		}
		return i, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.Errorf("invalid float %q", text)
	}
	return p.imaginary(f), nil
}

func (p *Parser) imaginary(f float64) any {
	if p.pos < len(p.src) && p.src[p.pos] == 'j' {
		p.pos++
		return complex(0, f)
	}
	return f
}

// text reads a quoted literal. In binary literals \x escapes name single
// bytes; in text they name code points.
func (p *Parser) text(binary bool) (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		p.pos++
		if r == quote {
			return b.String(), nil
		}
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		if p.pos >= len(p.src) {
			break
		}
		esc := p.src[p.pos]
		p.pos++
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case 'x', 'u', 'U':
			width := map[rune]int{'x': 2, 'u': 4, 'U': 8}[esc]
			if p.pos+width > len(p.src) {
				return "", p.Errorf("truncated escape")
			}
			n, err := strconv.ParseUint(string(p.src[p.pos:p.pos+width]), 16, 32)
			if err != nil {
				return "", p.Errorf("invalid escape")
			}
			p.pos += width
			if binary {
				b.WriteByte(byte(n))
			} else {
				b.WriteRune(rune(n))
			}
		default:
			b.WriteRune(esc)
		}
	}
	return "", p.Errorf("unterminated string")
}

func toFloat(v any) (float64, bool) {
	if f, ok := v.(float64); ok {
		return f, true
	}
	if i, ok := AsInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func isComparable(v any) bool {
	switch v.(type) {
	case nil, bool, string, int64, float64, complex128:
		return true
	}
	return false
}
