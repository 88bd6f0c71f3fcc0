package domain

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Path         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// Archiver snapshots a pair's correspondence table to object storage before
// the table is rewritten.
type Archiver interface {
	// ArchiveTable uploads the current on-disk table for the pair and returns
	// the storage path of the snapshot. A missing table file is not an error:
	// the pair has never been reconciled, so there is nothing to snapshot.
	ArchiveTable(ctx context.Context, pair Pair, runID, tablePath string) (string, error)

	// Prune deletes the oldest snapshots for the pair beyond the retention
	// count and returns how many were removed.
	Prune(ctx context.Context, pair Pair) (int, error)
}
