package pipeline

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
	"teammatch/internal/service"
	"teammatch/internal/store/csvtable"
)

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

func pairSpec(t *testing.T, dir, secondary string) service.PairSpec {
	t.Helper()
	norm := reconcile.NewNormalizer(false, nil, nil)
	return service.PairSpec{
		Pair:          domain.Pair{Sport: "soccer", Canonical: "oddswar", Secondary: secondary},
		CanonicalList: filepath.Join(dir, "canonical.txt"),
		SecondaryList: filepath.Join(dir, secondary+".txt"),
		TablePath:     filepath.Join(dir, secondary+"_matches.csv"),
		Tables:        csvtable.NewStore("Oddswar", secondary),
		Reconciler:    reconcile.NewReconciler(reconcile.NewMatcher(norm, 70)),
		Suggester:     reconcile.NewSuggester(65),
	}
}

func newOrchestrator(pairs []service.PairSpec, minI, maxI time.Duration) *Orchestrator {
	logger := discardLogger()
	reconciler := service.NewReconcileService(namelist.NewLoader(), nil, nil, nil, nil, nil, 0, logger)
	checker := service.NewCheckService(namelist.NewLoader(), logger)
	return NewOrchestrator(reconciler, checker, pairs, minI, maxI, logger)
}

func TestRunOnceReconcilesEveryPair(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLines(t, filepath.Join(dir, "canonical.txt"), "Fenerbahce", "Galatasaray")

	a := pairSpec(t, dir, "tumbet")
	writeLines(t, a.SecondaryList, "Fenerbahçe SK")
	b := pairSpec(t, dir, "stoiximan")
	writeLines(t, b.SecondaryList, "Galatasaray SK")

	o := newOrchestrator([]service.PairSpec{a, b}, time.Minute, time.Minute)
	require.NoError(t, o.RunOnce(context.Background()))

	for _, spec := range []service.PairSpec{a, b} {
		table, _, err := spec.Tables.Load(context.Background(), spec.TablePath)
		require.NoError(t, err)
		require.Len(t, table, 2)
	}
}

func TestRunOnceSkipsPairWithMissingNameList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLines(t, filepath.Join(dir, "canonical.txt"), "Fenerbahce")

	ok := pairSpec(t, dir, "tumbet")
	writeLines(t, ok.SecondaryList, "Fenerbahçe SK")
	missing := pairSpec(t, dir, "stoiximan") // secondary list never written

	o := newOrchestrator([]service.PairSpec{ok, missing}, time.Minute, time.Minute)

	// A missing name list is a per-pair skip, not a cycle failure.
	require.NoError(t, o.RunOnce(context.Background()))

	table, _, err := ok.Tables.Load(context.Background(), ok.TablePath)
	require.NoError(t, err)
	require.Len(t, table, 1)

	_, statErr := os.Stat(missing.TablePath)
	require.True(t, os.IsNotExist(statErr))
}

func TestRunOnceCollectsHardFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLines(t, filepath.Join(dir, "canonical.txt"), "Fenerbahce")

	broken := pairSpec(t, dir, "tumbet")
	writeLines(t, broken.SecondaryList, "Fenerbahçe SK")

	// A regular file where the table's parent directory should be makes the
	// write fail hard.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	broken.TablePath = filepath.Join(blocker, "matches.csv")

	o := newOrchestrator([]service.PairSpec{broken}, time.Minute, time.Minute)
	require.Error(t, o.RunOnce(context.Background()))
}

func TestRunCheckPasses(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLines(t, filepath.Join(dir, "canonical.txt"), "Fenerbahce")

	spec := pairSpec(t, dir, "tumbet")
	writeLines(t, spec.SecondaryList, "Fenerbahçe SK")
	require.NoError(t, spec.Tables.Write(context.Background(), spec.TablePath, domain.Table{
		"Fenerbahce": {Canonical: "Fenerbahce", Matched: "Fenerbahçe SK", Confidence: 76.9},
	}))

	o := newOrchestrator([]service.PairSpec{spec}, time.Minute, time.Minute)
	require.NoError(t, o.RunCheck(context.Background()))
}

func TestRunDaemonStopsOnCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLines(t, filepath.Join(dir, "canonical.txt"), "Fenerbahce")
	spec := pairSpec(t, dir, "tumbet")
	writeLines(t, spec.SecondaryList, "Fenerbahçe SK")

	o := newOrchestrator([]service.PairSpec{spec}, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.RunDaemon(ctx) }()

	// Give the first cycle a moment, then cancel during the sleep.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop on cancel")
	}

	// The first cycle ran before the cancel.
	table, _, err := spec.Tables.Load(context.Background(), spec.TablePath)
	require.NoError(t, err)
	require.Len(t, table, 1)
}

func TestNextIntervalStaysInBounds(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(nil, 3*time.Minute, 5*time.Minute)
	for i := 0; i < 100; i++ {
		d := o.nextInterval()
		require.GreaterOrEqual(t, d, 3*time.Minute)
		require.LessOrEqual(t, d, 5*time.Minute)
	}

	fixed := newOrchestrator(nil, time.Minute, time.Minute)
	require.Equal(t, time.Minute, fixed.nextInterval())
}
