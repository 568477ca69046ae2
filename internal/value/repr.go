package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Repr returns a deterministic literal rendering of v. Set members and
// record keys appear in canonical order so equal values always render the
// same way.
func Repr(v any) string {
	var b strings.Builder
	writeRepr(&b, v)
	return b.String()
}

func writeRepr(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if x {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		fmt.Fprintf(b, "%d", x)
	case float32:
		b.WriteString(FormatFloat(float64(x)))
	case float64:
		b.WriteString(FormatFloat(x))
	case complex64:
		writeComplex(b, complex128(x))
	case complex128:
		writeComplex(b, x)
	case string:
		b.WriteString(QuoteText(x))
	case []byte:
		b.WriteString(QuoteBinary(x))
	case Tuple:
		b.WriteByte('(')
		writeItems(b, x)
		if len(x) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case []any:
		b.WriteByte('[')
		writeItems(b, x)
		b.WriteByte(']')
	case *Set:
		writeSet(b, x)
	case map[any]any:
		b.WriteByte('{')
		for i, k := range SortedKeys(x) {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, k)
			b.WriteString(": ")
			writeRepr(b, x[k])
		}
		b.WriteByte('}')
	case *Random:
		fmt.Fprintf(b, "Random(seed=%d)", x.seed)
	default:
		fmt.Fprintf(b, "%v", x)
	}
}

func writeItems(b *strings.Builder, items []any) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		writeRepr(b, item)
	}
}

func writeSet(b *strings.Builder, s *Set) {
	if len(s.elems) == 0 {
		if s.frozen {
			b.WriteString("frozenset()")
		} else {
			b.WriteString("set()")
		}
		return
	}
	if s.frozen {
		b.WriteString("frozenset(")
	}
	b.WriteByte('{')
	writeItems(b, s.Elements())
	b.WriteByte('}')
	if s.frozen {
		b.WriteByte(')')
	}
}

func writeComplex(b *strings.Builder, c complex128) {
	im := imag(c)
	sign := "+"
	if im < 0 || (im == 0 && math.Signbit(im)) {
		sign = "-"
		im = -im
	}
	fmt.Fprintf(b, "(%s%s%sj)", FormatFloat(real(c)), sign, FormatFloat(im))
}

// FormatFloat renders f so that it always reads back as a float: integral
// values keep a trailing ".0" and large or tiny magnitudes use exponent
// notation.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	var s string
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		s = strconv.FormatFloat(f, 'g', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// QuoteText renders text as a single-quoted literal
func QuoteText(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch {
		case r == '\'' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x100 && !unicode.IsPrint(r):
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000 && !unicode.IsPrint(r):
			fmt.Fprintf(&b, `\u%04x`, r)
		case !unicode.IsPrint(r):
			fmt.Fprintf(&b, `\U%08x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// QuoteBinary renders binary data as a b'...' literal
func QuoteBinary(data []byte) string {
	var b strings.Builder
	b.WriteString("b'")
	for _, c := range data {
		switch {
		case c == '\'' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
