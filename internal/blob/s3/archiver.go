package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"teammatch/internal/domain"
)

// ---------------------------------------------------------------------------
// Narrow store interface required by the archiver.
//
// The archiver only requires the listing and deletion methods its retention
// pass actually calls, not the full Reader surface. Reader satisfies the
// interface implicitly.
// ---------------------------------------------------------------------------

// SnapshotStore provides read access to stored snapshots for retention
// purposes.
type SnapshotStore interface {
	// List returns metadata for all snapshots whose key starts with the
	// given prefix.
	List(ctx context.Context, prefix string) ([]domain.BlobInfo, error)

	// Delete removes the snapshot at the given path.
	Delete(ctx context.Context, path string) error
}

// ---------------------------------------------------------------------------
// ArchiveImpl
// ---------------------------------------------------------------------------

// ArchiveImpl implements domain.Archiver. Before a correspondence table is
// rewritten, the current file is uploaded verbatim so the pre-run state can
// be recovered; after a successful run the oldest snapshots beyond the
// retention count are deleted.
type ArchiveImpl struct {
	writer    domain.BlobWriter
	snapshots SnapshotStore
	prefix    string
	keep      int
}

var _ domain.Archiver = (*ArchiveImpl)(nil)

// NewArchiver creates an ArchiveImpl that stores snapshots under the given
// key prefix and retains at most keep snapshots per pair. keep <= 0 disables
// pruning.
func NewArchiver(writer domain.BlobWriter, snapshots SnapshotStore, prefix string, keep int) *ArchiveImpl {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "archive"
	}
	return &ArchiveImpl{
		writer:    writer,
		snapshots: snapshots,
		prefix:    prefix,
		keep:      keep,
	}
}

// ArchiveTable uploads the pair's current table file to
// <prefix>/<sport>/<canonical>-<secondary>/<timestamp>_<runID>.csv and
// returns the storage path. A missing table file means the pair has never
// been reconciled; nothing is uploaded and the returned path is empty.
func (a *ArchiveImpl) ArchiveTable(ctx context.Context, pair domain.Pair, runID, tablePath string) (string, error) {
	data, err := os.ReadFile(tablePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("s3blob: archive table read %s: %w", tablePath, err)
	}

	stamp := time.Now().UTC().Format(snapshotStampFormat)
	path := fmt.Sprintf("%s/%s/%s_%s.csv", a.prefix, pairPath(pair), stamp, runID)

	if err := a.writer.Put(ctx, path, bytes.NewReader(data), "text/csv"); err != nil {
		return "", fmt.Errorf("s3blob: archive table upload %s: %w", path, err)
	}
	return path, nil
}

// Prune deletes the oldest snapshots for the pair beyond the retention
// count and returns how many were removed. It stops at the first deletion
// failure, returning the count removed so far.
func (a *ArchiveImpl) Prune(ctx context.Context, pair domain.Pair) (int, error) {
	if a.keep <= 0 {
		return 0, nil
	}

	prefix := fmt.Sprintf("%s/%s/", a.prefix, pairPath(pair))
	infos, err := a.snapshots.List(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("s3blob: prune list %s: %w", prefix, err)
	}
	if len(infos) <= a.keep {
		return 0, nil
	}

	// Snapshot keys embed a fixed-width UTC timestamp, so lexical order on
	// the key is chronological order.
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })

	removed := 0
	for _, info := range infos[:len(infos)-a.keep] {
		if err := a.snapshots.Delete(ctx, info.Path); err != nil {
			return removed, fmt.Errorf("s3blob: prune delete %s: %w", info.Path, err)
		}
		removed++
	}
	return removed, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// snapshotStampFormat is the fixed-width UTC layout embedded in snapshot
// keys.
const snapshotStampFormat = "20060102T150405Z"

// pairPath builds the storage path segment for a pair.
//
//	soccer/betconstruct-tumbet
func pairPath(pair domain.Pair) string {
	return strings.ReplaceAll(pair.Key(), ":", "/")
}
