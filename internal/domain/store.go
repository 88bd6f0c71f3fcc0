package domain

import "context"

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// NameSource loads a provider's team-name list: one name per line, blank
// lines ignored. A missing file is a usage error wrapping ErrNameListMissing.
type NameSource interface {
	Load(ctx context.Context, path string) ([]string, error)
}

// TableStore loads and rewrites correspondence tables.
type TableStore interface {
	// Load returns the table at path together with the count of malformed
	// rows it skipped. A missing file yields an empty table, not an error.
	Load(ctx context.Context, path string) (Table, int, error)
	// Write serializes the full table to path in sorted canonical order.
	Write(ctx context.Context, path string, table Table) error
}

// MappingMirror mirrors finished correspondence tables into a queryable
// relational store, so collaborators can resolve names without touching the
// engine's table files.
type MappingMirror interface {
	ReplacePair(ctx context.Context, pair Pair, runID string, table Table) error
	GetEntry(ctx context.Context, pair Pair, canonical string) (Entry, error)
	ListPair(ctx context.Context, pair Pair, opts ListOpts) ([]Entry, error)
	CountMatched(ctx context.Context, pair Pair) (int64, error)
}

// RunRecorder persists reconciliation run history.
type RunRecorder interface {
	Record(ctx context.Context, report Report) error
	LastRun(ctx context.Context, pair Pair) (Report, error)
	ListRecent(ctx context.Context, limit int) ([]Report, error)
}
