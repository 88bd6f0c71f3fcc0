package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"teammatch/internal/domain"
)

// RunStore implements domain.RunRecorder using PostgreSQL.
type RunStore struct {
	pool *pgxpool.Pool
}

// NewRunStore creates a new RunStore backed by the given connection pool.
func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Record inserts one run report.
func (s *RunStore) Record(ctx context.Context, report domain.Report) error {
	const query = `
		INSERT INTO reconciliation_runs (
			id, sport, canonical_provider, secondary_provider,
			total, matched, preserved, updated, new_matches, skipped_rows,
			started_at, duration_ms
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9, $10,
			$11, $12
		)`

	_, err := s.pool.Exec(ctx, query,
		report.RunID, report.Pair.Sport, report.Pair.Canonical, report.Pair.Secondary,
		report.Total, report.Matched, report.Preserved, report.Updated, report.New, report.SkippedRows,
		report.StartedAt, report.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("postgres: record run %s: %w", report.RunID, err)
	}
	return nil
}

const runCols = `id, sport, canonical_provider, secondary_provider,
	total, matched, preserved, updated, new_matches, skipped_rows,
	started_at, duration_ms`

// LastRun returns the most recent run for a pair.
func (s *RunStore) LastRun(ctx context.Context, pair domain.Pair) (domain.Report, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+runCols+` FROM reconciliation_runs
		 WHERE sport = $1 AND canonical_provider = $2 AND secondary_provider = $3
		 ORDER BY started_at DESC LIMIT 1`,
		pair.Sport, pair.Canonical, pair.Secondary,
	)
	r, err := scanReport(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Report{}, domain.ErrNotFound
		}
		return domain.Report{}, fmt.Errorf("postgres: last run for %s: %w", pair, err)
	}
	return r, nil
}

// ListRecent returns the most recent runs across all pairs.
func (s *RunStore) ListRecent(ctx context.Context, limit int) ([]domain.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+runCols+` FROM reconciliation_runs
		 ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan run: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list recent runs rows: %w", err)
	}
	return reports, nil
}

// scanReport scans a single run row into a domain.Report.
func scanReport(row pgx.Row) (domain.Report, error) {
	var r domain.Report
	var durationMs int64
	err := row.Scan(
		&r.RunID, &r.Pair.Sport, &r.Pair.Canonical, &r.Pair.Secondary,
		&r.Total, &r.Matched, &r.Preserved, &r.Updated, &r.New, &r.SkippedRows,
		&r.StartedAt, &durationMs,
	)
	if err != nil {
		return domain.Report{}, err
	}
	r.Duration = time.Duration(durationMs) * time.Millisecond
	return r, nil
}
