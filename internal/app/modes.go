package app

import (
	"context"
	"log/slog"
	"time"

	"teammatch/internal/pipeline"
	"teammatch/internal/service"
)

// buildOrchestrator assembles the services and pipeline orchestrator shared
// by all modes.
func (a *App) buildOrchestrator(deps *Dependencies) *pipeline.Orchestrator {
	lockTTL := time.Duration(a.cfg.Redis.LockTTLSeconds) * time.Second

	reconciler := service.NewReconcileService(
		deps.Names,
		deps.Mirror,
		deps.Runs,
		deps.Cache,
		deps.Archiver,
		deps.Locks,
		lockTTL,
		a.logger,
	)
	checker := service.NewCheckService(deps.Names, a.logger)

	return pipeline.NewOrchestrator(
		reconciler,
		checker,
		deps.Pairs,
		a.cfg.Daemon.MinInterval.Duration,
		a.cfg.Daemon.MaxInterval.Duration,
		a.logger,
	)
}

// RunMode reconciles every enabled pair once and exits. The returned error
// is non-nil when at least one pair failed hard, so one-shot invocations
// exit non-zero on failure.
func (a *App) RunMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting run mode", slog.Int("pairs", len(deps.Pairs)))
	return a.buildOrchestrator(deps).RunOnce(ctx)
}

// DaemonMode reconciles all pairs in a jittered loop until the context is
// cancelled.
func (a *App) DaemonMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting daemon mode", slog.Int("pairs", len(deps.Pairs)))
	return a.buildOrchestrator(deps).RunDaemon(ctx)
}

// CheckMode verifies the stored tables against the current secondary lists,
// logs candidates for human review, and exits without modifying anything.
func (a *App) CheckMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting check mode", slog.Int("pairs", len(deps.Pairs)))
	return a.buildOrchestrator(deps).RunCheck(ctx)
}
