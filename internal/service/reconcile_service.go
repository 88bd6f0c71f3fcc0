package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"teammatch/internal/domain"
	"teammatch/internal/reconcile"
)

// PairSpec bundles everything needed to process one provider pair: its
// identity, its three file paths, and the per-pair collaborators built from
// the pair's configuration (header names, threshold, prefix stripping).
type PairSpec struct {
	Pair          domain.Pair
	CanonicalList string
	SecondaryList string
	TablePath     string

	Tables     domain.TableStore
	Reconciler *reconcile.Reconciler
	Suggester  *reconcile.Suggester
}

// ReconcileService runs the full reconciliation workflow for provider pairs:
// load both name lists and the prior table, snapshot the table, match, write
// the table back, and fan the result out to the mirror, run history, and
// cache.
//
// The mirror, runs, cache, archiver, and locks collaborators are optional;
// a nil collaborator skips the corresponding step. The CSV table is the
// durable artifact, so failures after it has been written are logged and
// swallowed rather than failing the run.
type ReconcileService struct {
	names    domain.NameSource
	mirror   domain.MappingMirror
	runs     domain.RunRecorder
	cache    domain.MappingCache
	archiver domain.Archiver
	locks    domain.LockManager
	lockTTL  time.Duration
	logger   *slog.Logger
}

// NewReconcileService creates a ReconcileService. Only names and logger are
// required; the remaining collaborators may be nil.
func NewReconcileService(
	names domain.NameSource,
	mirror domain.MappingMirror,
	runs domain.RunRecorder,
	cache domain.MappingCache,
	archiver domain.Archiver,
	locks domain.LockManager,
	lockTTL time.Duration,
	logger *slog.Logger,
) *ReconcileService {
	return &ReconcileService{
		names:    names,
		mirror:   mirror,
		runs:     runs,
		cache:    cache,
		archiver: archiver,
		locks:    locks,
		lockTTL:  lockTTL,
		logger:   logger,
	}
}

// ReconcilePair reconciles one provider pair end to end and returns the run
// report. The prior table is snapshotted before it is overwritten, so an
// archiver failure aborts the run; a lock failure surfaces
// domain.ErrLockHeld so callers can treat an overlapping run as a skip.
func (s *ReconcileService) ReconcilePair(ctx context.Context, spec PairSpec) (domain.Report, error) {
	started := time.Now()
	runID := uuid.NewString()

	if s.locks != nil {
		unlock, err := s.locks.Acquire(ctx, "reconcile:"+spec.Pair.Key(), s.lockTTL)
		if err != nil {
			return domain.Report{}, fmt.Errorf("reconcile_service: acquire lock %s: %w", spec.Pair.Key(), err)
		}
		defer unlock()
	}

	canonical, err := s.names.Load(ctx, spec.CanonicalList)
	if err != nil {
		return domain.Report{}, fmt.Errorf("reconcile_service: load canonical list: %w", err)
	}

	secondary, err := s.names.Load(ctx, spec.SecondaryList)
	if err != nil {
		return domain.Report{}, fmt.Errorf("reconcile_service: load secondary list: %w", err)
	}

	prior, skipped, err := spec.Tables.Load(ctx, spec.TablePath)
	if err != nil {
		return domain.Report{}, fmt.Errorf("reconcile_service: load table: %w", err)
	}

	if s.archiver != nil {
		path, err := s.archiver.ArchiveTable(ctx, spec.Pair, runID, spec.TablePath)
		if err != nil {
			return domain.Report{}, fmt.Errorf("reconcile_service: archive table: %w", err)
		}
		if path != "" {
			s.logger.InfoContext(ctx, "reconcile_service: table snapshot archived",
				slog.String("pair", spec.Pair.Key()),
				slog.String("path", path),
			)
		}
	}

	outcome := spec.Reconciler.Reconcile(canonical, secondary, prior)

	if err := spec.Tables.Write(ctx, spec.TablePath, outcome.Table); err != nil {
		return domain.Report{}, fmt.Errorf("reconcile_service: write table: %w", err)
	}

	report := domain.Report{
		RunID:       runID,
		Pair:        spec.Pair,
		Total:       len(outcome.Table),
		Matched:     outcome.Table.MatchedCount(),
		Preserved:   outcome.Preserved,
		Updated:     outcome.Updated,
		New:         outcome.New,
		SkippedRows: skipped,
		StartedAt:   started,
		Duration:    time.Since(started),
	}

	// The table file is already written; everything below is derived state.
	if s.mirror != nil {
		if err := s.mirror.ReplacePair(ctx, spec.Pair, runID, outcome.Table); err != nil {
			s.logger.WarnContext(ctx, "reconcile_service: mirror replace failed",
				slog.String("pair", spec.Pair.Key()),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.runs != nil {
		if err := s.runs.Record(ctx, report); err != nil {
			s.logger.WarnContext(ctx, "reconcile_service: run record failed",
				slog.String("pair", spec.Pair.Key()),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.cache != nil {
		if err := s.cache.SetTable(ctx, spec.Pair, outcome.Table); err != nil {
			s.logger.WarnContext(ctx, "reconcile_service: cache set failed",
				slog.String("pair", spec.Pair.Key()),
				slog.String("error", err.Error()),
			)
			// Non-fatal: the cache will expire on its own.
		}
	}

	if s.archiver != nil {
		removed, err := s.archiver.Prune(ctx, spec.Pair)
		if err != nil {
			s.logger.WarnContext(ctx, "reconcile_service: snapshot prune failed",
				slog.String("pair", spec.Pair.Key()),
				slog.String("error", err.Error()),
			)
		} else if removed > 0 {
			s.logger.DebugContext(ctx, "reconcile_service: old snapshots pruned",
				slog.String("pair", spec.Pair.Key()),
				slog.Int("removed", removed),
			)
		}
	}

	s.logger.InfoContext(ctx, "reconcile_service: pair reconciled",
		slog.String("pair", spec.Pair.Key()),
		slog.String("run_id", runID),
		slog.Int("total", report.Total),
		slog.Int("matched", report.Matched),
		slog.Int("preserved", report.Preserved),
		slog.Int("updated", report.Updated),
		slog.Int("new", report.New),
		slog.Int("skipped_rows", report.SkippedRows),
		slog.Float64("match_rate", report.MatchRate()),
		slog.Int64("duration_ms", report.Duration.Milliseconds()),
	)

	return report, nil
}
