package reconcile

import (
	"sort"

	"teammatch/internal/domain"
)

// Outcome carries the merged table for one provider pair together with the
// counters the run report exposes.
type Outcome struct {
	Table     domain.Table
	Preserved int // frozen entries carried forward unchanged
	Updated   int // previously matched entries that were re-matched
	New       int // entries matched for the first time
}

// Reconciler merges a prior correspondence table with freshly scraped name
// lists. Manually verified entries survive unconditionally, even when their
// canonical name has dropped out of the input; everything else is re-matched
// greedily with each secondary name claimed at most once.
type Reconciler struct {
	matcher *Matcher
}

func NewReconciler(matcher *Matcher) *Reconciler {
	return &Reconciler{matcher: matcher}
}

// Reconcile produces the next table for one pair. It is a pure function of
// its three inputs: canonical names are processed in sorted order, so the
// result is deterministic and a second run over identical inputs reproduces
// the table byte for byte.
func (r *Reconciler) Reconcile(canonical, secondary []string, prior domain.Table) Outcome {
	frozen := prior.Frozen()

	live := make(map[string]struct{}, len(canonical))
	for _, name := range canonical {
		live[name] = struct{}{}
	}

	// Union of live names and frozen keys: orphaned manual entries stay in
	// the table after their canonical name vanishes from fresh input.
	all := make([]string, 0, len(live)+len(frozen))
	for name := range live {
		all = append(all, name)
	}
	for name := range frozen {
		if _, ok := live[name]; !ok {
			all = append(all, name)
		}
	}
	sort.Strings(all)

	// Secondary names already claimed by frozen entries are off the table.
	// Duplicate list entries would let one name be claimed twice; only the
	// first occurrence enters the pool.
	claimed := frozen.ClaimedMatches()
	pool := make([]string, 0, len(secondary))
	inPool := make(map[string]struct{}, len(secondary))
	for _, name := range secondary {
		if _, ok := claimed[name]; ok {
			continue
		}
		if _, ok := inPool[name]; ok {
			continue
		}
		inPool[name] = struct{}{}
		pool = append(pool, name)
	}

	out := Outcome{Table: make(domain.Table, len(all))}
	for _, name := range all {
		if e, ok := frozen[name]; ok {
			out.Table[name] = e
			out.Preserved++
			continue
		}
		if _, ok := live[name]; !ok {
			// Unreachable given the union above; emit an unmatched row
			// rather than fail.
			out.Table[name] = domain.Entry{Canonical: name}
			continue
		}
		match, score := r.matcher.BestMatch(name, pool)
		if match == "" {
			out.Table[name] = domain.Entry{Canonical: name}
			continue
		}
		pool = removeFirst(pool, match)
		out.Table[name] = domain.Entry{Canonical: name, Matched: match, Confidence: score}
		if prev, ok := prior[name]; ok && prev.Matched != "" {
			out.Updated++
		} else {
			out.New++
		}
	}
	return out
}

func removeFirst(pool []string, name string) []string {
	for i, p := range pool {
		if p == name {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
