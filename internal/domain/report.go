package domain

import "time"

// Report summarizes one reconciliation pass over a provider pair. Unmatched
// rows are routine output, not failures; the report carries aggregate counts
// instead of per-row errors.
type Report struct {
	RunID       string
	Pair        Pair
	Total       int // rows in the output table
	Matched     int // rows with a non-empty match
	Preserved   int // frozen rows carried forward unchanged
	Updated     int // previously matched rows that were re-matched
	New         int // rows matched for the first time
	SkippedRows int // malformed prior rows dropped during load
	StartedAt   time.Time
	Duration    time.Duration
}

// MatchRate returns the matched share of output rows as a percentage.
func (r Report) MatchRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Matched) / float64(r.Total) * 100
}

// UnmatchedCount returns the number of rows without a match.
func (r Report) UnmatchedCount() int { return r.Total - r.Matched }
