package ui

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxSuggestionDistance is the largest edit distance still offered as a
// "did you mean" suggestion
const MaxSuggestionDistance = 2

// SuggestNames returns the candidates within MaxSuggestionDistance edits of
// name, closest first. Case is ignored. An exact match yields nothing, since
// there is nothing to correct.
//
// Example:
//
//	SuggestNames("itn", []string{"int", "float", "text"}) // ["int"]
func SuggestNames(name string, candidates []string) []string {
	type match struct {
		name     string
		distance int
	}

	target := strings.ToLower(name)
	var matches []match
	for _, c := range candidates {
		d := EditDistance(target, strings.ToLower(c))
		if d == 0 || d > MaxSuggestionDistance {
			continue
		}
		matches = append(matches, match{name: c, distance: d})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

// EditDistance is the Levenshtein distance between a and b, counted in runes
func EditDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return utf8.RuneCountInString(b)
	}
	if len(rb) == 0 {
		return utf8.RuneCountInString(a)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}

	return prev[len(rb)]
}
