package csvtable

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"teammatch/internal/domain"
)

// Store reads and writes correspondence tables as CSV files: a header row,
// then one row per canonical name with the matched secondary name and the
// confidence score. Unmatched rows carry explicit empty strings, and the
// file a run writes is exactly what the next run loads back.
type Store struct {
	canonicalHeader string
	secondaryHeader string
}

// NewStore builds a store labelling the two name columns with the given
// provider display names, e.g. "Oddswar" and "Stoiximan".
func NewStore(canonicalHeader, secondaryHeader string) *Store {
	return &Store{canonicalHeader: canonicalHeader, secondaryHeader: secondaryHeader}
}

// Load implements domain.TableStore. Fields are positional; the header row
// is skipped without validation. Rows with fewer than three fields, an empty
// canonical name, or an unparseable confidence are skipped and counted, not
// fatal. A missing file yields an empty table.
func (s *Store) Load(ctx context.Context, path string) (domain.Table, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(domain.Table), 0, nil
		}
		return nil, 0, fmt.Errorf("csvtable: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	table := make(domain.Table)
	skipped := 0
	header := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("csvtable: read %s: %w", path, err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 3 {
			skipped++
			continue
		}
		canonical, matched := rec[0], rec[1]
		if canonical == "" {
			skipped++
			continue
		}
		var confidence float64
		if confStr := strings.TrimSpace(rec[2]); confStr != "" {
			v, err := strconv.ParseFloat(confStr, 64)
			if err != nil {
				skipped++
				continue
			}
			confidence = v
		}
		table[canonical] = domain.Entry{Canonical: canonical, Matched: matched, Confidence: confidence}
	}
	return table, skipped, nil
}

// Write implements domain.TableStore. Rows are serialized in sorted
// canonical order with confidence formatted to one decimal place, so the
// 100.0 sentinel survives every round trip. The table is written to a temp
// sibling and renamed, so a crashed run never leaves a half-written file.
func (s *Store) Write(ctx context.Context, path string, table domain.Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("csvtable: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("csvtable: create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{s.canonicalHeader, s.secondaryHeader, "Confidence"}); err != nil {
		tmp.Close()
		return fmt.Errorf("csvtable: write header: %w", err)
	}
	for _, name := range table.SortedCanonicals() {
		e := table[name]
		conf := ""
		if e.Matched != "" {
			conf = strconv.FormatFloat(e.Confidence, 'f', 1, 64)
		}
		if err := w.Write([]string{name, e.Matched, conf}); err != nil {
			tmp.Close()
			return fmt.Errorf("csvtable: write row %q: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("csvtable: flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csvtable: close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("csvtable: rename into %s: %w", path, err)
	}
	return nil
}
