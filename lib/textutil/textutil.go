package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases name and removes all whitespace.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	return whitespaceRegex.ReplaceAllString(name, "")
}

// MatchName reports whether the normalized name contains any of the matchers,
// matchers are expected to be normalized already.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// ClosestMatch returns the index of the candidate most similar to name by
// Jaro-Winkler distance on normalized text and its score (0 to 1). It returns
// -1 when there are no candidates.
func ClosestMatch(name string, candidates []string) (int, float64) {
	name = NormalizeName(name)

	best := -1
	bestScore := -1.0
	for i, c := range candidates {
		score := matchr.JaroWinkler(name, NormalizeName(c), false)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestScore
}
