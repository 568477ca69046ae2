package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/listatree/hypothesis/internal/converter"
	"github.com/listatree/hypothesis/internal/database"
	"github.com/listatree/hypothesis/internal/descriptor"
	"github.com/listatree/hypothesis/internal/specmap"
)

// Level represents the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// Message configures the formatting of an error, warning or info message
type Message struct {
	Level        Level
	Context      string
	Problem      string
	Consequence  string
	Hints        []string
	HelpCommands []string
	NoColor      bool
}

// Format renders a message with its hints and help commands
//
// Example output:
//
//	✗ SHAPE MISMATCH: 'x' could not have been produced by int
//
//	   Hint: check the value against the descriptor
//
//	   → Inspect stored examples: exampledb fetch 'int'
func Format(m Message) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch m.Level {
	case LevelError:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "✗"
	case LevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "!"
	default:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "i"
	}
	hintColor := color.New(color.FgYellow)
	helpColor := color.New(color.FgCyan)

	if m.NoColor {
		for _, c := range []*color.Color{headerColor, bodyColor, hintColor, helpColor} {
			c.DisableColor()
		}
	}

	if m.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(m.Context), m.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, m.Problem)
	}

	if m.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", m.Consequence)
	}

	if len(m.Hints) > 0 {
		b.WriteString("\n")
		for _, hint := range m.Hints {
			hintColor.Fprintf(&b, "   Hint: %s\n", hint)
		}
	}

	if len(m.HelpCommands) > 0 {
		b.WriteString("\n")
		for _, cmd := range m.HelpCommands {
			helpColor.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// Write writes a formatted message to w
func Write(w io.Writer, m Message) {
	fmt.Fprint(w, Format(m))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to w
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// ForError picks the message for an error returned by a command
func ForError(err error, noColor bool) Message {
	m := Message{Level: LevelError, Problem: err.Error(), NoColor: noColor}

	var mismatch *database.ShapeMismatchError
	var notSerializable *converter.NotSerializableError
	var missing *specmap.MissingSpecificationError
	switch {
	case errors.As(err, &mismatch):
		m.Context = "shape mismatch"
		m.Hints = []string{"the value must be one the descriptor could have produced"}
		m.HelpCommands = []string{
			fmt.Sprintf("Inspect stored examples: exampledb fetch %q", mismatch.Descriptor),
		}
	case errors.As(err, &notSerializable):
		m.Context = "not serializable"
		m.Hints = []string{"examples of this descriptor cannot be stored"}
	case errors.Is(err, converter.ErrMalformedRecord),
		errors.Is(err, converter.ErrEnumerationLookup):
		m.Context = "malformed record"
		m.Consequence = "Fetching stops at the first record that cannot be decoded."
	case errors.Is(err, converter.ErrWrongFormat):
		m.Context = "wrong format"
	case errors.As(err, &missing):
		m.Context = "unknown descriptor"
		if names := SuggestNames(missing.Descriptor, primitiveNames()); len(names) > 0 {
			m.Hints = []string{fmt.Sprintf("Did you mean %s?", strings.Join(names, " or "))}
		}
		m.HelpCommands = []string{"Get help: exampledb check --help"}
	}
	return m
}

func primitiveNames() []string {
	names := make([]string, len(descriptor.Primitives))
	for i, p := range descriptor.Primitives {
		names[i] = p.String()
	}
	return names
}

// ParseError reports a descriptor or value that could not be parsed
func ParseError(what, input string, err error, noColor bool) string {
	return Format(Message{
		Level:   LevelError,
		Context: "parse error",
		Problem: fmt.Sprintf("Cannot parse %s %q: %v", what, input, err),
		Hints: []string{
			"descriptors look like [int], (int, text), one_of(int, text) or {'a': float}",
			"values use literal syntax: 1, 1.5, 'a', b'\\x00', (1,), [1, 2], {'a': 1}",
		},
		HelpCommands: []string{"Get help: exampledb check --help"},
		NoColor:      noColor,
	})
}

// ConfigError creates a configuration error
func ConfigError(message string, hints []string, noColor bool) string {
	return Format(Message{
		Level:   LevelError,
		Context: "configuration error",
		Problem: message,
		Hints:   hints,
		HelpCommands: []string{
			"View config: cat exampledb.yaml",
			"Get help: exampledb --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a warning message
func Warning(message string, hints []string, noColor bool) string {
	return Format(Message{
		Level:   LevelWarning,
		Problem: message,
		Hints:   hints,
		NoColor: noColor,
	})
}

// Info creates an info message
func Info(message string, noColor bool) string {
	return Format(Message{
		Level:   LevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}
