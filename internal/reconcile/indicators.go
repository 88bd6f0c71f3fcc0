package reconcile

import (
	"regexp"
	"strings"

	"teammatch/internal/domain"
)

var (
	agePattern     = regexp.MustCompile(`(?i)\b(U19|U20|U21|U23)\b`)
	reservePattern = regexp.MustCompile(`\s+(II|B)\s*$`)
)

// ExtractIndicators scans a team name for age-group, women's-team, and
// reserve-team markers. It runs on the original name, never the normalized
// form. A trailing "II" and a trailing capital "B" map to the same reserve
// indicator; the reserve check is case sensitive so "b" does not count.
func ExtractIndicators(name string) domain.IndicatorSet {
	set := make(domain.IndicatorSet)
	for _, m := range agePattern.FindAllStringSubmatch(name, -1) {
		set.Add(domain.Indicator(strings.ToUpper(m[1])))
	}
	if strings.Contains(name, "(W)") || strings.Contains(name, "(w)") {
		set.Add(domain.IndicatorWomen)
	}
	if reservePattern.MatchString(name) {
		set.Add(domain.IndicatorReserve)
	}
	return set
}
