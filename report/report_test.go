package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afcarl/gemini/store"
	"github.com/afcarl/gemini/wmh"
)

func band(n byte) []byte { return []byte{n} }

func TestBuildGroupedClustersCollidingShas(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemIndex()

	require.NoError(t, idx.UpsertBand(ctx, 0, band(1), "a", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 0, band(1), "b", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 1, band(9), "c", wmh.FileMode))

	r, err := BuildGrouped(ctx, idx, wmh.FileMode, nil)
	require.NoError(t, err)
	require.Len(t, r.Communities, 1)
	require.Equal(t, []string{"a", "b"}, r.Communities[0].Members)
}

// TestTransitiveClosureAcrossHashtables mirrors this package's three-file
// scenario: A and B collide on one hashtable, B and C on another, so all
// three must land in a single community even though A and C never
// collide directly.
func TestTransitiveClosureAcrossHashtables(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemIndex()

	require.NoError(t, idx.UpsertBand(ctx, 0, band(1), "A", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 0, band(1), "B", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 1, band(2), "B", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 1, band(2), "C", wmh.FileMode))

	r, err := BuildGrouped(ctx, idx, wmh.FileMode, nil)
	require.NoError(t, err)
	require.Len(t, r.Communities, 1)
	require.Equal(t, []string{"A", "B", "C"}, r.Communities[0].Members)
}

func TestCommunitiesOrderedBySizeThenLexSmallestMember(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemIndex()

	// Community {a, b}: size 2.
	require.NoError(t, idx.UpsertBand(ctx, 0, band(1), "a", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 0, band(1), "b", wmh.FileMode))

	// Community {x, y, z}: size 3, should sort first despite "a" < "x".
	require.NoError(t, idx.UpsertBand(ctx, 1, band(2), "x", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 1, band(2), "y", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 1, band(2), "z", wmh.FileMode))

	r, err := BuildGrouped(ctx, idx, wmh.FileMode, nil)
	require.NoError(t, err)
	require.Len(t, r.Communities, 2)
	require.Equal(t, []string{"x", "y", "z"}, r.Communities[0].Members)
	require.Equal(t, []string{"a", "b"}, r.Communities[1].Members)
}

func TestGroupedAndCondensedAgree(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemIndex()

	require.NoError(t, idx.UpsertBand(ctx, 0, band(1), "A", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 0, band(1), "B", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 1, band(2), "B", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 1, band(2), "C", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 2, band(3), "D", wmh.FileMode))
	require.NoError(t, idx.UpsertBand(ctx, 2, band(3), "E", wmh.FileMode))

	grouped, err := BuildGrouped(ctx, idx, wmh.FileMode, nil)
	require.NoError(t, err)
	condensed, err := BuildCondensed(ctx, idx, wmh.FileMode, nil)
	require.NoError(t, err)

	require.Equal(t, grouped.Communities, condensed.Communities)
}

func TestSkippedFilesPassThrough(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemIndex()

	r, err := BuildGrouped(ctx, idx, wmh.FileMode, []string{"broken.go"})
	require.NoError(t, err)
	require.Empty(t, r.Communities)
	require.Equal(t, []string{"broken.go"}, r.SkippedFiles)
}
