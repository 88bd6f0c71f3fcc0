package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"teammatch/internal/domain"
	"teammatch/internal/service"
)

// Orchestrator drives the reconciliation workflow across all configured
// provider pairs: once, on a jittered daemon loop, or as a read-only check
// pass.
type Orchestrator struct {
	reconciler  *service.ReconcileService
	checker     *service.CheckService
	pairs       []service.PairSpec
	minInterval time.Duration
	maxInterval time.Duration
	logger      *slog.Logger
}

// NewOrchestrator creates an Orchestrator over the given pair specs. The
// intervals bound the random sleep between daemon cycles.
func NewOrchestrator(
	reconciler *service.ReconcileService,
	checker *service.CheckService,
	pairs []service.PairSpec,
	minInterval time.Duration,
	maxInterval time.Duration,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		reconciler:  reconciler,
		checker:     checker,
		pairs:       pairs,
		minInterval: minInterval,
		maxInterval: maxInterval,
		logger:      logger,
	}
}

// RunOnce reconciles every pair concurrently. Pairs are isolated: a missing
// name list or a held lock skips that pair, any other failure is logged and
// collected. The returned error joins the hard failures; it is nil when
// every pair either succeeded or was skipped.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	started := time.Now()
	o.logger.Info("reconciliation cycle starting", slog.Int("pairs", len(o.pairs)))

	failures := make([]error, len(o.pairs))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range o.pairs {
		i, spec := i, spec
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			_, err := o.reconciler.ReconcilePair(gctx, spec)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrLockHeld):
				o.logger.Info("pair skipped, reconciliation already running",
					slog.String("pair", spec.Pair.Key()),
				)
			case errors.Is(err, domain.ErrNameListMissing):
				o.logger.Warn("pair skipped, name list missing",
					slog.String("pair", spec.Pair.Key()),
					slog.String("error", err.Error()),
				)
			default:
				o.logger.Error("pair reconciliation failed",
					slog.String("pair", spec.Pair.Key()),
					slog.String("error", err.Error()),
				)
				failures[i] = fmt.Errorf("pair %s: %w", spec.Pair.Key(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	o.logger.Info("reconciliation cycle complete",
		slog.Int("pairs", len(o.pairs)),
		slog.Int64("duration_ms", time.Since(started).Milliseconds()),
	)

	return errors.Join(failures...)
}

// RunDaemon reconciles all pairs immediately, then repeats forever, sleeping
// a uniformly random interval between cycles so the upstream scrapers never
// see a fixed cadence. Cycle failures are logged and the loop continues;
// RunDaemon returns nil on context cancellation.
func (o *Orchestrator) RunDaemon(ctx context.Context) error {
	o.logger.Info("daemon starting",
		slog.Duration("min_interval", o.minInterval),
		slog.Duration("max_interval", o.maxInterval),
	)

	if err := o.RunOnce(ctx); err != nil {
		if ctx.Err() != nil {
			o.logger.Info("daemon stopped")
			return nil
		}
		o.logger.Error("reconciliation cycle finished with failures", slog.String("error", err.Error()))
	}

	for {
		timer := time.NewTimer(o.nextInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			o.logger.Info("daemon stopped")
			return nil
		case <-timer.C:
		}

		if err := o.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				o.logger.Info("daemon stopped")
				return nil
			}
			o.logger.Error("reconciliation cycle finished with failures", slog.String("error", err.Error()))
		}
	}
}

// RunCheck verifies every pair sequentially so the review output stays
// grouped per pair. Stale and double-claimed entries are logged as warnings,
// candidate suggestions as info lines for human review.
func (o *Orchestrator) RunCheck(ctx context.Context) error {
	failures := make([]error, 0, len(o.pairs))

	for _, spec := range o.pairs {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := o.checker.CheckPair(ctx, spec)
		if err != nil {
			if errors.Is(err, domain.ErrNameListMissing) {
				o.logger.Warn("pair skipped, name list missing",
					slog.String("pair", spec.Pair.Key()),
					slog.String("error", err.Error()),
				)
				continue
			}
			o.logger.Error("pair check failed",
				slog.String("pair", spec.Pair.Key()),
				slog.String("error", err.Error()),
			)
			failures = append(failures, fmt.Errorf("pair %s: %w", spec.Pair.Key(), err))
			continue
		}

		for _, name := range res.Stale {
			o.logger.Warn("matched name missing from secondary list",
				slog.String("pair", spec.Pair.Key()),
				slog.String("matched", name),
			)
		}
		for matched, claimants := range res.DoubleClaims {
			o.logger.Warn("secondary name claimed more than once",
				slog.String("pair", spec.Pair.Key()),
				slog.String("matched", matched),
				slog.Any("claimants", claimants),
			)
		}
		for _, s := range res.Suggestions {
			o.logger.Info("candidate for unmatched name",
				slog.String("pair", spec.Pair.Key()),
				slog.String("canonical", s.Canonical),
				slog.String("candidate", s.Candidate),
				slog.Float64("score", s.Score),
			)
		}
	}

	return errors.Join(failures...)
}

// nextInterval draws a uniformly random duration in
// [minInterval, maxInterval].
func (o *Orchestrator) nextInterval() time.Duration {
	span := o.maxInterval - o.minInterval
	if span <= 0 {
		return o.minInterval
	}
	return o.minInterval + time.Duration(rand.Float64()*float64(span))
}
