package store

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/RoaringBitmap/roaring"

	"github.com/afcarl/gemini/wmh"
)

// BatchDeduper wraps an Index and suppresses redundant UpsertBand calls
// within one data-parallel collect batch: rows scheduled in parallel by
// the harness may recompute identical (sha, bands) pairs — a rerun of a
// flaky row, or two otherwise-identical files in different repos — and
// there is no reason to pay for duplicate writes to the backend.
//
// Membership is tracked in a roaring.Bitmap over a 32-bit fingerprint of
// each (hashtable, value, sha) triple, the same compressed-bitmap role
// zoekt's posting lists give roaring elsewhere in the corpus. A bitmap is a
// probabilistic filter here only in the sense that distinct triples can
// (rarely) collide on their fingerprint; a collision just costs one
// skipped, otherwise-idempotent write, since UpsertBand already tolerates
// re-sends of identical rows.
type BatchDeduper struct {
	Index
	mu   sync.Mutex // guards seen; rows call UpsertBand concurrently
	seen *roaring.Bitmap
}

// NewBatchDeduper wraps idx for one build batch. Construct a fresh
// BatchDeduper per batch; it is not meant to live across builds.
func NewBatchDeduper(idx Index) *BatchDeduper {
	return &BatchDeduper{Index: idx, seen: roaring.New()}
}

func (b *BatchDeduper) UpsertBand(ctx context.Context, hashtable int32, value []byte, sha string, mode wmh.Mode) error {
	fp := fingerprint(mode.Name(), hashtable, value, sha)
	b.mu.Lock()
	added := b.seen.CheckedAdd(fp)
	b.mu.Unlock()
	if added {
		return b.Index.UpsertBand(ctx, hashtable, value, sha, mode)
	}
	return nil
}

func fingerprint(mode string, hashtable int32, value []byte, sha string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(mode))
	h.Write([]byte{byte(hashtable), byte(hashtable >> 8), byte(hashtable >> 16), byte(hashtable >> 24)})
	h.Write(value)
	h.Write([]byte(sha))
	return h.Sum32()
}
