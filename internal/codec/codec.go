// Package codec turns JSON-compatible values into canonical JSON text and
// back. Decoded numbers keep the integer/float distinction of the text:
// literals without a fraction or exponent decode to int64, all others to
// float64.
package codec

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/listatree/hypothesis/internal/value"
)

// ErrMalformedText is returned when stored text is not valid JSON
var ErrMalformedText = errors.New("malformed JSON text")

// Float is a float64 that always serializes as a JSON float, so it never
// decodes as an integer. Non-finite values travel as the strings "NaN",
// "Infinity" and "-Infinity".
type Float float64

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	x := float64(f)
	switch {
	case math.IsNaN(x):
		return []byte(`"NaN"`), nil
	case math.IsInf(x, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(x, -1):
		return []byte(`"-Infinity"`), nil
	}
	return []byte(value.FormatFloat(x)), nil
}

// ParseFloat reads a float from a decoded JSON value
func ParseFloat(j any) (float64, bool) {
	switch x := j.(type) {
	case float64:
		return x, true
	case Float:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		switch x {
		case "NaN":
			return math.NaN(), true
		case "Infinity":
			return math.Inf(1), true
		case "-Infinity":
			return math.Inf(-1), true
		}
	}
	return 0, false
}

// Marshal renders a JSON-compatible value as compact JSON text
func Marshal(v any) (string, error) {
	data, err := json.MarshalNoEscape(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", value.Repr(v), err)
	}
	return string(data), nil
}

// Unmarshal parses JSON text into plain values: nil, bool, int64, float64,
// string, []any and map[string]any.
func Unmarshal(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedText, err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after value", ErrMalformedText)
	}
	return normalize(raw)
}

func normalize(raw any) (any, error) {
	switch x := raw.(type) {
	case json.Number:
		return parseNumber(string(x))
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			v, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			v, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return raw, nil
}

func parseNumber(s string) (any, error) {
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: integer %s out of range", ErrMalformedText, s)
		}
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid number %s", ErrMalformedText, s)
	}
	return f, nil
}
