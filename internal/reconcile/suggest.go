package reconcile

import (
	"sort"
	"strings"

	"teammatch/internal/domain"
)

// Suggestion pairs an unmatched canonical name with a near-miss candidate
// that cleared the review floor but was not assigned by the matcher.
type Suggestion struct {
	Canonical string
	Candidate string
	Score     float64
}

// Suggester surfaces near-miss candidates for manual review. It compares
// plain lowercased names with no diacritic stripping and no indicator
// gating: the output is a wide net for a human to curate, not an
// assignment.
type Suggester struct {
	floor float64
}

// NewSuggester builds a suggester with the given review floor (0-100).
func NewSuggester(floor float64) *Suggester {
	return &Suggester{floor: floor}
}

// Suggest returns candidates for every unmatched canonical name in table,
// scored against the secondary names no entry has claimed. Results are
// ordered by canonical name, then score descending, then candidate name.
func (s *Suggester) Suggest(table domain.Table, secondary []string) []Suggestion {
	claimed := table.ClaimedMatches()
	free := make([]string, 0, len(secondary))
	seen := make(map[string]struct{}, len(secondary))
	for _, name := range secondary {
		if _, ok := claimed[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		free = append(free, name)
	}

	var out []Suggestion
	for _, name := range table.SortedCanonicals() {
		if table[name].Matched != "" {
			continue
		}
		lower := strings.ToLower(name)
		for _, cand := range free {
			if score := Ratio(lower, strings.ToLower(cand)); score >= s.floor {
				out = append(out, Suggestion{Canonical: name, Candidate: cand, Score: score})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Canonical != out[j].Canonical {
			return out[i].Canonical < out[j].Canonical
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Candidate < out[j].Candidate
	})
	return out
}
