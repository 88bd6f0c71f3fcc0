package domain

import (
	"context"
	"time"
)

// MappingCache provides fast cross-process reads of finished correspondence
// tables.
type MappingCache interface {
	SetTable(ctx context.Context, pair Pair, table Table) error
	GetTable(ctx context.Context, pair Pair) (Table, error)
	GetEntry(ctx context.Context, pair Pair, canonical string) (Entry, error)
	Invalidate(ctx context.Context, pair Pair) error
}

// LockManager provides distributed locking so two concurrent runs cannot
// rewrite the same pair's table.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}
