package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"teammatch/internal/domain"
)

// MappingStore implements domain.MappingMirror using PostgreSQL. The mirror
// holds exactly what the last run wrote for each pair, so downstream
// consumers can resolve names without parsing the table files.
type MappingStore struct {
	pool *pgxpool.Pool
}

// NewMappingStore creates a new MappingStore backed by the given connection pool.
func NewMappingStore(pool *pgxpool.Pool) *MappingStore {
	return &MappingStore{pool: pool}
}

// ReplacePair atomically swaps a pair's mirrored rows for the given table.
// Confidence is NULL for unmatched rows, mirroring the empty field in the
// table file.
func (s *MappingStore) ReplacePair(ctx context.Context, pair domain.Pair, runID string, table domain.Table) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin replace pair %s: %w", pair, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM team_mappings
		 WHERE sport = $1 AND canonical_provider = $2 AND secondary_provider = $3`,
		pair.Sport, pair.Canonical, pair.Secondary,
	); err != nil {
		return fmt.Errorf("postgres: clear pair %s: %w", pair, err)
	}

	const insert = `
		INSERT INTO team_mappings (
			sport, canonical_provider, secondary_provider,
			canonical_name, matched_name, confidence, run_id, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	batch := &pgx.Batch{}
	names := table.SortedCanonicals()
	for _, name := range names {
		e := table[name]
		var confidence *float64
		if e.Matched != "" {
			c := e.Confidence
			confidence = &c
		}
		batch.Queue(insert,
			pair.Sport, pair.Canonical, pair.Secondary,
			name, e.Matched, confidence, runID,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range names {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("postgres: insert mapping row %d for %s: %w", i, pair, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("postgres: close mapping batch for %s: %w", pair, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit replace pair %s: %w", pair, err)
	}
	return nil
}

// GetEntry retrieves one mirrored row by canonical name.
func (s *MappingStore) GetEntry(ctx context.Context, pair domain.Pair, canonical string) (domain.Entry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT canonical_name, matched_name, confidence
		 FROM team_mappings
		 WHERE sport = $1 AND canonical_provider = $2 AND secondary_provider = $3
		   AND canonical_name = $4`,
		pair.Sport, pair.Canonical, pair.Secondary, canonical,
	)
	e, err := scanEntry(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Entry{}, domain.ErrNotFound
		}
		return domain.Entry{}, fmt.Errorf("postgres: get mapping %s/%q: %w", pair, canonical, err)
	}
	return e, nil
}

// ListPair returns a pair's mirrored rows in canonical-name order.
func (s *MappingStore) ListPair(ctx context.Context, pair domain.Pair, opts domain.ListOpts) ([]domain.Entry, error) {
	query := `SELECT canonical_name, matched_name, confidence
		 FROM team_mappings
		 WHERE sport = $1 AND canonical_provider = $2 AND secondary_provider = $3
		 ORDER BY canonical_name`
	args := []any{pair.Sport, pair.Canonical, pair.Secondary}
	argIdx := 4

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list mappings for %s: %w", pair, err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan mapping for %s: %w", pair, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list mappings rows for %s: %w", pair, err)
	}
	return entries, nil
}

// CountMatched returns the number of mirrored rows with a non-empty match.
func (s *MappingStore) CountMatched(ctx context.Context, pair domain.Pair) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM team_mappings
		 WHERE sport = $1 AND canonical_provider = $2 AND secondary_provider = $3
		   AND matched_name <> ''`,
		pair.Sport, pair.Canonical, pair.Secondary,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count matched for %s: %w", pair, err)
	}
	return count, nil
}

// scanEntry scans a single mapping row into a domain.Entry.
func scanEntry(row pgx.Row) (domain.Entry, error) {
	var e domain.Entry
	var confidence *float64
	if err := row.Scan(&e.Canonical, &e.Matched, &confidence); err != nil {
		return domain.Entry{}, err
	}
	if confidence != nil {
		e.Confidence = *confidence
	}
	return e, nil
}
