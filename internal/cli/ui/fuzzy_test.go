package ui

import (
	"reflect"
	"testing"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"", "int", 3},
		{"int", "", 3},
		{"int", "int", 0},
		{"itn", "int", 2},
		{"txt", "text", 1},
		{"kitten", "sitting", 3},
		{"café", "cafe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := EditDistance(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("EditDistance(%q, %q) = %d; want %d", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestSuggestNames(t *testing.T) {
	candidates := []string{"int", "float", "text", "binary", "bool", "complex", "Random"}

	tests := []struct {
		name     string
		target   string
		expected []string
	}{
		{"transposed", "itn", []string{"int"}},
		{"closest first", "txt", []string{"text", "int"}},
		{"case ignored", "random", nil},
		{"wrong case typo", "Randon", []string{"Random"}},
		{"missing letter", "boo", []string{"bool"}},
		{"nothing close", "Widget", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SuggestNames(tt.target, candidates)
			if len(result) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("SuggestNames(%q) = %v; want %v", tt.target, result, tt.expected)
			}
		})
	}
}
