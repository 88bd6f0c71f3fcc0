package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"teammatch/internal/domain"
	"teammatch/internal/reconcile"
)

// CheckResult summarizes a verification pass over one pair's stored table.
type CheckResult struct {
	Pair        domain.Pair
	Total       int
	Matched     int
	SkippedRows int

	// Unmatched lists canonical names with no secondary match, in
	// lexicographic order.
	Unmatched []string

	// Stale lists matched secondary names that no longer appear in the
	// secondary provider's current list, in lexicographic order.
	Stale []string

	// DoubleClaims maps each secondary name claimed by more than one
	// canonical name to its claimants, claimants in lexicographic order.
	DoubleClaims map[string][]string

	// Suggestions are wide-net candidate matches for unmatched canonical
	// names, for human review.
	Suggestions []reconcile.Suggestion
}

// CheckService verifies a pair's stored table against the secondary
// provider's current list and proposes candidates for names the matcher left
// unmatched. It never modifies the table.
type CheckService struct {
	names  domain.NameSource
	logger *slog.Logger
}

// NewCheckService creates a CheckService.
func NewCheckService(names domain.NameSource, logger *slog.Logger) *CheckService {
	return &CheckService{
		names:  names,
		logger: logger,
	}
}

// CheckPair loads the pair's table and the secondary provider's current
// list, reports unmatched, stale, and double-claimed entries, and collects
// suggestions for the unmatched ones. A missing table is checked as empty.
func (s *CheckService) CheckPair(ctx context.Context, spec PairSpec) (CheckResult, error) {
	table, skipped, err := spec.Tables.Load(ctx, spec.TablePath)
	if err != nil {
		return CheckResult{}, fmt.Errorf("check_service: load table: %w", err)
	}

	secondary, err := s.names.Load(ctx, spec.SecondaryList)
	if err != nil {
		return CheckResult{}, fmt.Errorf("check_service: load secondary list: %w", err)
	}

	live := make(map[string]struct{}, len(secondary))
	for _, name := range secondary {
		live[name] = struct{}{}
	}

	res := CheckResult{
		Pair:         spec.Pair,
		Total:        len(table),
		Matched:      table.MatchedCount(),
		SkippedRows:  skipped,
		DoubleClaims: make(map[string][]string),
	}

	staleSet := make(map[string]struct{})
	claims := make(map[string][]string)
	for _, name := range table.SortedCanonicals() {
		e := table[name]
		if e.Unmatched() {
			res.Unmatched = append(res.Unmatched, name)
			continue
		}
		// Claimants arrive sorted because the table scan is sorted.
		claims[e.Matched] = append(claims[e.Matched], name)
		if _, ok := live[e.Matched]; !ok {
			staleSet[e.Matched] = struct{}{}
		}
	}

	for matched := range staleSet {
		res.Stale = append(res.Stale, matched)
	}
	sort.Strings(res.Stale)

	for matched, claimants := range claims {
		if len(claimants) > 1 {
			res.DoubleClaims[matched] = claimants
		}
	}

	res.Suggestions = spec.Suggester.Suggest(table, secondary)

	s.logger.InfoContext(ctx, "check_service: pair checked",
		slog.String("pair", spec.Pair.Key()),
		slog.Int("total", res.Total),
		slog.Int("matched", res.Matched),
		slog.Int("unmatched", len(res.Unmatched)),
		slog.Int("stale", len(res.Stale)),
		slog.Int("double_claims", len(res.DoubleClaims)),
		slog.Int("suggestions", len(res.Suggestions)),
	)

	return res, nil
}
