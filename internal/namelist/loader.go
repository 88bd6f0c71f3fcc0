package namelist

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"teammatch/internal/domain"
)

// Loader reads provider name lists from disk: one UTF-8 team name per line,
// surrounding whitespace trimmed, blank lines ignored.
type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

// Load implements domain.NameSource. A missing file wraps
// domain.ErrNameListMissing; reconciliation cannot proceed without both
// lists, so callers treat that as a usage error rather than recovering.
func (l *Loader) Load(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("namelist: %s: %w", path, domain.ErrNameListMissing)
		}
		return nil, fmt.Errorf("namelist: open %s: %w", path, err)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name != "" {
			names = append(names, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("namelist: read %s: %w", path, err)
	}
	return names, nil
}
