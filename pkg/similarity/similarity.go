package similarity

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Score returns a 0-100 similarity score between two strings. Comparison is
// case-insensitive.
func Score(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	return matchr.JaroWinkler(a, b, false) * 100
}

// Relevant reports whether a found listing title is close enough to the
// original search term.
func Relevant(searchTerm, title string, minScore float64) bool {
	if minScore <= 0 {
		return true
	}
	// A title that contains the whole search term is always relevant,
	// regardless of how much extra text surrounds it.
	if strings.Contains(strings.ToLower(title), strings.ToLower(strings.TrimSpace(searchTerm))) {
		return true
	}
	return Score(searchTerm, title) >= minScore
}
