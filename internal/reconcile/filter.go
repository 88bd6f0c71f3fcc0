package reconcile

import "teammatch/internal/domain"

// FilterCandidates returns the subset of candidates whose extracted
// indicator set equals want, preserving order. An empty result means no
// match is possible for the source name; it is not an error.
func FilterCandidates(want domain.IndicatorSet, candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if ExtractIndicators(c).Equal(want) {
			out = append(out, c)
		}
	}
	return out
}
