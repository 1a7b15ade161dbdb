package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afcarl/gemini/wmh"
)

func TestMemIndexUpsertAndLookup(t *testing.T) {
	ctx := context.Background()
	idx := NewMemIndex()

	bands := [][]byte{[]byte("b0"), []byte("b1"), []byte("b2")}
	require.NoError(t, UpsertBands(ctx, idx, "sha-a", bands, wmh.FileMode))

	shas, err := idx.Lookup(ctx, 1, []byte("b1"), wmh.FileMode)
	require.NoError(t, err)
	require.Equal(t, []string{"sha-a"}, shas)

	shas, err = idx.Lookup(ctx, 1, []byte("nope"), wmh.FileMode)
	require.NoError(t, err)
	require.Empty(t, shas)
}

func TestMemIndexUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := NewMemIndex()
	bands := [][]byte{[]byte("x")}

	require.NoError(t, UpsertBands(ctx, idx, "sha-a", bands, wmh.FileMode))
	require.NoError(t, UpsertBands(ctx, idx, "sha-a", bands, wmh.FileMode))

	it, err := idx.ScanAll(ctx, wmh.FileMode)
	require.NoError(t, err)
	defer it.Close()

	count := 0
	for it.Next() {
		count++
	}
	require.NoError(t, it.Err())
	require.Equal(t, 1, count)
}

func TestMemIndexFindByContentHash(t *testing.T) {
	ctx := context.Background()
	idx := NewMemIndex()
	rf := RepoFile{Repo: "r", Commit: "c", Path: "p.go", Sha: "sha1"}
	require.NoError(t, idx.PutMeta(ctx, rf))

	got, err := idx.FindByContentHash(ctx, "sha1")
	require.NoError(t, err)
	require.Equal(t, []RepoFile{rf}, got)
}

func TestScanAllOrderedByHashtableThenValue(t *testing.T) {
	ctx := context.Background()
	idx := NewMemIndex()

	require.NoError(t, idx.UpsertBand(ctx, 2, []byte("z"), "sha-1", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 1, []byte("b"), "sha-2", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 1, []byte("a"), "sha-3", wmh.FileMode))

	it, err := idx.ScanAll(ctx, wmh.FileMode)
	require.NoError(t, err)
	defer it.Close()

	var order []string
	for it.Next() {
		r := it.Row()
		order = append(order, string(r.Value))
	}
	require.Equal(t, []string{"a", "b", "z"}, order)
}

func TestMemIndexListSkippedReturnsInWriteOrder(t *testing.T) {
	ctx := context.Background()
	idx := NewMemIndex()

	require.NoError(t, idx.PutSkip(ctx, SkippedFile{Path: "a.go", Kind: "external_service", Reason: "ast timeout"}))
	require.NoError(t, idx.PutSkip(ctx, SkippedFile{Path: "b.go", Kind: "malformed_vocabulary", Reason: "bad token"}))

	got, err := idx.ListSkipped(ctx)
	require.NoError(t, err)
	require.Equal(t, []SkippedFile{
		{Path: "a.go", Kind: "external_service", Reason: "ast timeout"},
		{Path: "b.go", Kind: "malformed_vocabulary", Reason: "bad token"},
	}, got)
}

// countingIndex counts the UpsertBand calls that reach the wrapped Index.
type countingIndex struct {
	Index
	upserts int
}

func (c *countingIndex) UpsertBand(ctx context.Context, hashtable int32, value []byte, sha string, mode wmh.Mode) error {
	c.upserts++
	return c.Index.UpsertBand(ctx, hashtable, value, sha, mode)
}

func TestBatchDeduperSuppressesDuplicateWritesWithinBatch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemIndex()
	counter := &countingIndex{Index: idx}
	dedup := NewBatchDeduper(counter)

	bands := [][]byte{[]byte("b0"), []byte("b1")}
	require.NoError(t, UpsertBands(ctx, dedup, "sha-a", bands, wmh.FileMode))
	// Simulate the harness rerunning the same row.
	require.NoError(t, UpsertBands(ctx, dedup, "sha-a", bands, wmh.FileMode))
	require.Equal(t, 2, counter.upserts)

	it, err := idx.ScanAll(ctx, wmh.FileMode)
	require.NoError(t, err)
	defer it.Close()

	count := 0
	for it.Next() {
		count++
	}
	require.Equal(t, 2, count)
}
