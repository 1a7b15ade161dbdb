package feature

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afcarl/gemini/vocab"
)

func mustVocab(t *testing.T) *vocab.DocFreq {
	t.Helper()
	d, err := vocab.New(10, map[string]int{"a": 1, "b": 5, "c": 10})
	require.NoError(t, err)
	return d
}

func TestBuildDropsUnknownTokens(t *testing.T) {
	voc := mustVocab(t)
	b := Build(voc, []Feature{{Token: "unknown", RawWeight: 100}})
	require.True(t, b.Empty())
}

func TestBuildAllUnknownIsEmptyBag(t *testing.T) {
	voc := mustVocab(t)
	b := Build(voc, []Feature{{Token: "x"}, {Token: "y"}})
	require.True(t, b.Empty())
	require.Empty(t, b.Indices())
}

func TestBuildAccumulates(t *testing.T) {
	voc := mustVocab(t)
	b := Build(voc, []Feature{
		{Token: "a", RawWeight: 2},
		{Token: "a", RawWeight: 3},
	})
	idx, ok := voc.TokenIndex("a")
	require.True(t, ok)
	require.NotZero(t, b.Weight(uint32(idx)))
	require.Equal(t, []uint32{uint32(idx)}, b.Indices())
}

func TestBuildLenMatchesVocab(t *testing.T) {
	voc := mustVocab(t)
	b := Build(voc, nil)
	require.Equal(t, voc.Len(), b.Len())
}
