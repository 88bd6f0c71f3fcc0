package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teammatch/internal/domain"
	"teammatch/internal/namelist"
	"teammatch/internal/reconcile"
	"teammatch/internal/store/csvtable"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeMirror struct {
	pairs  []domain.Pair
	tables []domain.Table
}

func (m *fakeMirror) ReplacePair(_ context.Context, pair domain.Pair, _ string, table domain.Table) error {
	m.pairs = append(m.pairs, pair)
	m.tables = append(m.tables, table)
	return nil
}

func (m *fakeMirror) GetEntry(context.Context, domain.Pair, string) (domain.Entry, error) {
	return domain.Entry{}, domain.ErrNotFound
}

func (m *fakeMirror) ListPair(context.Context, domain.Pair, domain.ListOpts) ([]domain.Entry, error) {
	return nil, nil
}

func (m *fakeMirror) CountMatched(context.Context, domain.Pair) (int64, error) { return 0, nil }

type fakeRuns struct {
	reports []domain.Report
}

func (r *fakeRuns) Record(_ context.Context, report domain.Report) error {
	r.reports = append(r.reports, report)
	return nil
}

func (r *fakeRuns) LastRun(context.Context, domain.Pair) (domain.Report, error) {
	return domain.Report{}, domain.ErrNotFound
}

func (r *fakeRuns) ListRecent(context.Context, int) ([]domain.Report, error) { return nil, nil }

type fakeCache struct {
	sets int
}

func (c *fakeCache) SetTable(context.Context, domain.Pair, domain.Table) error {
	c.sets++
	return nil
}

func (c *fakeCache) GetTable(context.Context, domain.Pair) (domain.Table, error) {
	return nil, domain.ErrNotFound
}

func (c *fakeCache) GetEntry(context.Context, domain.Pair, string) (domain.Entry, error) {
	return domain.Entry{}, domain.ErrNotFound
}

func (c *fakeCache) Invalidate(context.Context, domain.Pair) error { return nil }

type fakeArchiver struct {
	archived int
	pruned   int
}

func (a *fakeArchiver) ArchiveTable(_ context.Context, pair domain.Pair, runID, tablePath string) (string, error) {
	if _, err := os.Stat(tablePath); os.IsNotExist(err) {
		return "", nil
	}
	a.archived++
	return "archive/" + pair.Key() + "/" + runID + ".csv", nil
}

func (a *fakeArchiver) Prune(context.Context, domain.Pair) (int, error) {
	a.pruned++
	return 0, nil
}

type heldLocks struct{}

func (heldLocks) Acquire(context.Context, string, time.Duration) (func(), error) {
	return nil, domain.ErrLockHeld
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	data := ""
	for _, l := range lines {
		data += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func testSpec(t *testing.T, dir string, threshold float64) PairSpec {
	t.Helper()
	norm := reconcile.NewNormalizer(false, nil, nil)
	return PairSpec{
		Pair:          domain.Pair{Sport: "soccer", Canonical: "oddswar", Secondary: "tumbet"},
		CanonicalList: filepath.Join(dir, "canonical.txt"),
		SecondaryList: filepath.Join(dir, "secondary.txt"),
		TablePath:     filepath.Join(dir, "matches.csv"),
		Tables:        csvtable.NewStore("Oddswar", "Tumbet"),
		Reconciler:    reconcile.NewReconciler(reconcile.NewMatcher(norm, threshold)),
		Suggester:     reconcile.NewSuggester(65),
	}
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestReconcilePairEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	spec := testSpec(t, dir, 70)
	writeLines(t, spec.CanonicalList, "Fenerbahce", "Besiktas (W)", "Konyaspor")
	writeLines(t, spec.SecondaryList, "Fenerbahçe SK", "Besiktas Women")

	mirror := &fakeMirror{}
	runs := &fakeRuns{}
	cache := &fakeCache{}
	svc := NewReconcileService(namelist.NewLoader(), mirror, runs, cache, nil, nil, 0, discardLogger())

	report, err := svc.ReconcilePair(context.Background(), spec)
	require.NoError(t, err)

	require.Equal(t, 3, report.Total)
	require.Equal(t, 1, report.Matched)
	require.Equal(t, 1, report.New)
	require.Zero(t, report.Preserved)
	require.NotEmpty(t, report.RunID)
	require.InDelta(t, 100.0/3, report.MatchRate(), 0.01)

	// The table landed on disk and is re-readable.
	table, skipped, err := spec.Tables.Load(context.Background(), spec.TablePath)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Equal(t, "Fenerbahçe SK", table["Fenerbahce"].Matched)
	require.True(t, table["Besiktas (W)"].Unmatched())

	// Derived state fanned out once each.
	require.Len(t, mirror.tables, 1)
	require.Len(t, runs.reports, 1)
	require.Equal(t, 1, cache.sets)
}

func TestReconcilePairPreservesManualEntriesAcrossRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	spec := testSpec(t, dir, 70)
	writeLines(t, spec.CanonicalList, "Fenerbahce")
	writeLines(t, spec.SecondaryList, "Fenerbahçe SK")

	// Prior table with a manually verified orphan.
	prior := domain.Table{
		"Club A": {Canonical: "Club A", Matched: "Club A FC", Confidence: domain.ManualConfidence},
	}
	require.NoError(t, spec.Tables.Write(context.Background(), spec.TablePath, prior))

	svc := NewReconcileService(namelist.NewLoader(), nil, nil, nil, nil, nil, 0, discardLogger())

	report, err := svc.ReconcilePair(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, 1, report.Preserved)
	require.Equal(t, 2, report.Total)

	table, _, err := spec.Tables.Load(context.Background(), spec.TablePath)
	require.NoError(t, err)
	require.Equal(t, "Club A FC", table["Club A"].Matched)
	require.Equal(t, domain.ManualConfidence, table["Club A"].Confidence)
}

func TestReconcilePairMissingNameListIsFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	spec := testSpec(t, dir, 70)
	writeLines(t, spec.SecondaryList, "Fenerbahçe SK")

	svc := NewReconcileService(namelist.NewLoader(), nil, nil, nil, nil, nil, 0, discardLogger())

	_, err := svc.ReconcilePair(context.Background(), spec)
	require.ErrorIs(t, err, domain.ErrNameListMissing)

	// Nothing was written.
	_, statErr := os.Stat(spec.TablePath)
	require.True(t, os.IsNotExist(statErr))
}

func TestReconcilePairHeldLockSurfaces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	spec := testSpec(t, dir, 70)
	writeLines(t, spec.CanonicalList, "Fenerbahce")
	writeLines(t, spec.SecondaryList, "Fenerbahçe SK")

	svc := NewReconcileService(namelist.NewLoader(), nil, nil, nil, nil, heldLocks{}, time.Minute, discardLogger())

	_, err := svc.ReconcilePair(context.Background(), spec)
	require.ErrorIs(t, err, domain.ErrLockHeld)
}

func TestReconcilePairArchivesPriorTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	spec := testSpec(t, dir, 70)
	writeLines(t, spec.CanonicalList, "Fenerbahce")
	writeLines(t, spec.SecondaryList, "Fenerbahçe SK")

	archiver := &fakeArchiver{}
	svc := NewReconcileService(namelist.NewLoader(), nil, nil, nil, archiver, nil, 0, discardLogger())

	// First run: no table on disk yet, nothing to snapshot.
	_, err := svc.ReconcilePair(context.Background(), spec)
	require.NoError(t, err)
	require.Zero(t, archiver.archived)
	require.Equal(t, 1, archiver.pruned)

	// Second run snapshots the table the first run wrote.
	_, err = svc.ReconcilePair(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, 1, archiver.archived)
}

func TestCheckPairReportsInvariantsAndSuggestions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	spec := testSpec(t, dir, 70)
	writeLines(t, spec.SecondaryList, "Fenerbahçe SK", "Galatasaray SK")

	table := domain.Table{
		"Fenerbahce":  {Canonical: "Fenerbahce", Matched: "Fenerbahçe SK", Confidence: 76.9},
		"Trabzonspor": {Canonical: "Trabzonspor", Matched: "Trabzonspor AS", Confidence: 80},
		"Galatasaray": {Canonical: "Galatasaray"},
	}
	require.NoError(t, spec.Tables.Write(context.Background(), spec.TablePath, table))

	svc := NewCheckService(namelist.NewLoader(), discardLogger())

	res, err := svc.CheckPair(context.Background(), spec)
	require.NoError(t, err)

	require.Equal(t, 3, res.Total)
	require.Equal(t, 2, res.Matched)
	require.Equal(t, []string{"Galatasaray"}, res.Unmatched)

	// "Trabzonspor AS" vanished from the secondary list.
	require.Equal(t, []string{"Trabzonspor AS"}, res.Stale)
	require.Empty(t, res.DoubleClaims)

	// The unmatched name picks up the free secondary candidate.
	require.NotEmpty(t, res.Suggestions)
	require.Equal(t, "Galatasaray", res.Suggestions[0].Canonical)
	require.Equal(t, "Galatasaray SK", res.Suggestions[0].Candidate)
}

func TestCheckPairFlagsDoubleClaims(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	spec := testSpec(t, dir, 70)
	writeLines(t, spec.SecondaryList, "Arsenal")

	// A hand-edited table can violate the invariant; check mode must say so.
	raw := "Oddswar,Tumbet,Confidence\n" +
		"Arsenal,Arsenal,100.0\n" +
		"Arsenal London,Arsenal,100.0\n"
	require.NoError(t, os.WriteFile(spec.TablePath, []byte(raw), 0o644))

	svc := NewCheckService(namelist.NewLoader(), discardLogger())

	res, err := svc.CheckPair(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, res.DoubleClaims, 1)
	require.Equal(t, []string{"Arsenal", "Arsenal London"}, res.DoubleClaims["Arsenal"])
}
