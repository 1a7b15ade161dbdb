package store

import (
	"context"

	"github.com/afcarl/gemini/wmh"
)

// Index is the hashtable index contract. Implementations: CQLIndex
// (backend.go, a real wide-column store) and MemIndex (memory.go, for
// tests and the in-process report/lookup test suites).
type Index interface {
	// UpsertBand writes one (hashtable, value, sha) row for the given
	// mode. Idempotent on identical input.
	UpsertBand(ctx context.Context, hashtable int32, value []byte, sha string, mode wmh.Mode) error

	// Lookup returns every sha that collided on (hashtable, value) under mode.
	Lookup(ctx context.Context, hashtable int32, value []byte, mode wmh.Mode) ([]string, error)

	// ScanAll streams every row of hashtables_{mode}, ordered by
	// (hashtable, value), so callers can group collisions without
	// materializing the full table. The returned RowIterator must be
	// Closed by the caller.
	ScanAll(ctx context.Context, mode wmh.Mode) (RowIterator, error)

	// FindByContentHash resolves provenance for an exact content hash
	// (the first-pass exact-duplicates lookup).
	FindByContentHash(ctx context.Context, sha string) ([]RepoFile, error)

	// PutMeta records provenance for sha, used by gemini-hash when it
	// indexes a file or function and by tests constructing fixtures.
	PutMeta(ctx context.Context, rf RepoFile) error

	// PutSkip records one file a hashing run could not index, so a later,
	// independent report run can surface it.
	PutSkip(ctx context.Context, sf SkippedFile) error

	// ListSkipped returns every recorded skip, in the order they were
	// written.
	ListSkipped(ctx context.Context) ([]SkippedFile, error)
}

// UpsertBands writes (h, bands[h], sha) for every band of a sketch. A
// band's identity is (hashtable_id, band_bytes): h is the hashtable id,
// taken from bands' slice position.
func UpsertBands(ctx context.Context, idx Index, sha string, bands [][]byte, mode wmh.Mode) error {
	for h, value := range bands {
		if err := idx.UpsertBand(ctx, int32(h), value, sha, mode); err != nil {
			return err
		}
	}
	return nil
}

// Bucket is a collision bucket: every sha sharing one (hashtable, value)
// key, as produced by the condensed extraction strategy.
type Bucket struct {
	Hashtable int32
	Value     []byte
	Shas      []string
}

// CondensedBuckets returns every collision bucket directly, the way a
// single GROUP BY query would on the backend. It must agree exactly with
// grouping the stream from ScanAll by (hashtable, value); package report's
// tests cross-check the two paths against each other.
type BucketLister interface {
	CondensedBuckets(ctx context.Context, mode wmh.Mode) ([]Bucket, error)
}

// RowIterator streams HashtableRow values from a ScanAll call. A scan that
// aborts partway through must have Err return a gemerr.ErrScanInterrupted-
// wrapped error rather than silently stopping.
type RowIterator interface {
	// Next advances to the next row. It returns false at end of stream or
	// on error; callers must check Err after Next returns false.
	Next() bool
	Row() HashtableRow
	Err() error
	Close() error
}
