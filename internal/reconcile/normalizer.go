package reconcile

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// markStripper decomposes characters and drops the combining marks, so
// "Beşiktaş" and "Besiktas" compare equal.
var markStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(markStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Normalizer produces comparison keys for team names: diacritics stripped,
// lowercased, and optionally one leading club prefix removed and
// parenthesized country codes expanded. Keys are used only for scoring;
// original names are what get stored and displayed.
type Normalizer struct {
	stripPrefixes bool
	prefixes      []string
	abbrevs       []abbrev
}

type abbrev struct {
	code string
	full string
}

// NewNormalizer builds a normalizer. Prefixes are matched case-insensitively
// at the start of a name followed by a space, first match in list order
// wins, and at most one is removed. Abbrevs maps parenthesized country codes
// (e.g. "(Pan)") to their expansions; replacements apply in sorted code
// order. Both lists are ignored unless stripPrefixes is set.
func NewNormalizer(stripPrefixes bool, prefixes []string, abbrevs map[string]string) *Normalizer {
	n := &Normalizer{stripPrefixes: stripPrefixes}
	for _, p := range prefixes {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			n.prefixes = append(n.prefixes, p+" ")
		}
	}
	codes := make([]string, 0, len(abbrevs))
	for code := range abbrevs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		n.abbrevs = append(n.abbrevs, abbrev{
			code: strings.ToLower(code),
			full: strings.ToLower(abbrevs[code]),
		})
	}
	return n
}

// Normalize returns the comparison key for name. Any input, including the
// empty string, normalizes without error.
func (n *Normalizer) Normalize(name string) string {
	key := strings.ToLower(stripDiacritics(name))
	if !n.stripPrefixes {
		return key
	}
	for _, p := range n.prefixes {
		if strings.HasPrefix(key, p) {
			key = strings.TrimSpace(key[len(p):])
			break
		}
	}
	for _, a := range n.abbrevs {
		key = strings.ReplaceAll(key, a.code, a.full)
	}
	return strings.TrimSpace(key)
}
