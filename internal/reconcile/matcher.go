package reconcile

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio returns a symmetric similarity score between two strings on a 0-100
// scale, derived from Levenshtein distance over the longer rune count. Two
// empty strings score 100.
func Ratio(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (1 - float64(dist)/float64(maxLen)) * 100
}

// Matcher scores one source name against a candidate pool and selects the
// best candidate at or above its threshold.
type Matcher struct {
	norm      *Normalizer
	threshold float64
}

// NewMatcher builds a matcher over the given normalizer. Threshold is the
// minimum score (0-100) for a candidate to count as a match.
func NewMatcher(norm *Normalizer, threshold float64) *Matcher {
	return &Matcher{norm: norm, threshold: threshold}
}

// BestMatch returns the original form of the best-scoring candidate for
// source, or ("", 0) when the indicator-filtered pool is empty or the best
// score falls below the threshold. Ties go to the earliest candidate in pool
// order, so results are deterministic for a fixed input ordering.
//
// BestMatch never mutates pool. Bulk callers must remove a returned winner
// from the pool before matching the next source name, so no secondary name
// is claimed twice.
func (m *Matcher) BestMatch(source string, pool []string) (string, float64) {
	if len(pool) == 0 {
		return "", 0
	}
	candidates := FilterCandidates(ExtractIndicators(source), pool)
	if len(candidates) == 0 {
		return "", 0
	}

	// Index normalized form -> original. A later duplicate form overwrites
	// the original it resolves to but keeps the first form's position, so
	// each form is scored exactly once.
	keys := make([]string, 0, len(candidates))
	byKey := make(map[string]string, len(candidates))
	for _, c := range candidates {
		k := m.norm.Normalize(c)
		if _, seen := byKey[k]; !seen {
			keys = append(keys, k)
		}
		byKey[k] = c
	}

	srcKey := m.norm.Normalize(source)
	bestKey, bestScore := "", -1.0
	for _, k := range keys {
		if score := Ratio(srcKey, k); score > bestScore {
			bestKey, bestScore = k, score
		}
	}
	if bestScore < m.threshold {
		return "", 0
	}
	return byKey[bestKey], bestScore
}
