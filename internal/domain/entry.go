package domain

import "sort"

// ManualConfidence is the score reserved for manually verified
// correspondences. Entries carrying it are frozen: reconciliation preserves
// them unchanged and never re-matches them, even when their canonical name
// disappears from fresh input.
const ManualConfidence = 100.0

// Entry is one row of a correspondence table: a canonical provider name, the
// secondary provider name matched to it, and the similarity score backing the
// match. Matched and Confidence are zero when the name is unmatched.
type Entry struct {
	Canonical  string
	Matched    string
	Confidence float64
}

// Unmatched reports whether the entry has no secondary match.
func (e Entry) Unmatched() bool { return e.Matched == "" }

// Frozen reports whether the entry is manually verified.
func (e Entry) Frozen() bool {
	return e.Matched != "" && e.Confidence == ManualConfidence
}

// Table is the full correspondence mapping for one provider pair, keyed by
// canonical name.
type Table map[string]Entry

// Lookup returns the entry for a canonical name.
func (t Table) Lookup(canonical string) (Entry, bool) {
	e, ok := t[canonical]
	return e, ok
}

// Frozen returns the subset of entries that are manually verified.
func (t Table) Frozen() Table {
	out := make(Table)
	for name, e := range t {
		if e.Frozen() {
			out[name] = e
		}
	}
	return out
}

// ClaimedMatches returns the set of secondary names already claimed by
// entries in the table.
func (t Table) ClaimedMatches() map[string]struct{} {
	claimed := make(map[string]struct{})
	for _, e := range t {
		if e.Matched != "" {
			claimed[e.Matched] = struct{}{}
		}
	}
	return claimed
}

// Mappings returns the matched-only view of the table as a canonical name to
// secondary name map, the shape downstream consumers join on.
func (t Table) Mappings() map[string]string {
	out := make(map[string]string)
	for name, e := range t {
		if e.Matched != "" {
			out[name] = e.Matched
		}
	}
	return out
}

// MatchedCount returns the number of entries with a non-empty match.
func (t Table) MatchedCount() int {
	n := 0
	for _, e := range t {
		if e.Matched != "" {
			n++
		}
	}
	return n
}

// SortedCanonicals returns the table's canonical names in lexicographic
// order, the order rows are serialized in.
func (t Table) SortedCanonicals() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
