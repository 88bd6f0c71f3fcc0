package domain

import (
	"sort"
	"strings"
)

// Indicator is a structured tag extracted from a team name: an age bracket,
// a women's-team marker, or a reserve-team marker. Two names are eligible to
// match only when their indicator sets are equal, regardless of how similar
// the strings are.
type Indicator string

const (
	IndicatorU19     Indicator = "U19"
	IndicatorU20     Indicator = "U20"
	IndicatorU21     Indicator = "U21"
	IndicatorU23     Indicator = "U23"
	IndicatorWomen   Indicator = "W"
	IndicatorReserve Indicator = "RESERVE"
)

// IndicatorSet is a set of indicators. The empty set is valid and common.
type IndicatorSet map[Indicator]struct{}

// NewIndicatorSet builds a set from the given indicators.
func NewIndicatorSet(indicators ...Indicator) IndicatorSet {
	s := make(IndicatorSet, len(indicators))
	for _, in := range indicators {
		s[in] = struct{}{}
	}
	return s
}

// Add inserts an indicator into the set.
func (s IndicatorSet) Add(in Indicator) { s[in] = struct{}{} }

// Has reports whether the indicator is present.
func (s IndicatorSet) Has(in Indicator) bool {
	_, ok := s[in]
	return ok
}

// Equal reports whether both sets contain exactly the same indicators.
func (s IndicatorSet) Equal(other IndicatorSet) bool {
	if len(s) != len(other) {
		return false
	}
	for in := range s {
		if _, ok := other[in]; !ok {
			return false
		}
	}
	return true
}

// String returns the sorted pipe-joined members, or "-" for the empty set.
func (s IndicatorSet) String() string {
	if len(s) == 0 {
		return "-"
	}
	members := make([]string, 0, len(s))
	for in := range s {
		members = append(members, string(in))
	}
	sort.Strings(members)
	return strings.Join(members, "|")
}
