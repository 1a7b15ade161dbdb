package wmh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afcarl/gemini/feature"
	"github.com/afcarl/gemini/vocab"
)

func mustBag(t *testing.T, weights map[string]int) *feature.Bag {
	t.Helper()
	df := map[string]int{}
	for tok := range weights {
		df[tok] = 1
	}
	voc, err := vocab.New(2, df)
	require.NoError(t, err)

	var feats []feature.Feature
	for tok, w := range weights {
		feats = append(feats, feature.Feature{Token: tok, RawWeight: uint32(w)})
	}
	return feature.Build(voc, feats)
}

func TestGenerateParamsDeterministic(t *testing.T) {
	p1 := GenerateParams(DefaultSeed, 8, 5)
	p2 := GenerateParams(DefaultSeed, 8, 5)
	require.Equal(t, p1.rs, p2.rs)
	require.Equal(t, p1.lnCs, p2.lnCs)
	require.Equal(t, p1.betas, p2.betas)
}

func TestGenerateParamsDifferentSeed(t *testing.T) {
	p1 := GenerateParams(1, 4, 4)
	p2 := GenerateParams(2, 4, 4)
	require.NotEqual(t, p1.rs, p2.rs)
}

func TestHashEmptyBagIsZeroSketch(t *testing.T) {
	bag := mustBag(t, nil)
	require.True(t, bag.Empty())

	params := GenerateParams(DefaultSeed, FuncMode.SampleSize(), 2)
	sketch := Hash(params, bag)
	require.True(t, sketch.Empty())
	require.Len(t, sketch, FuncMode.SampleSize())
}

func TestHashDeterministicForSameInputs(t *testing.T) {
	bag := mustBag(t, map[string]int{"a": 3, "b": 7})
	params := GenerateParams(DefaultSeed, 16, bag.Len())

	s1 := Hash(params, bag)
	s2 := Hash(params, bag)
	require.Equal(t, s1, s2)
}

func TestBandsConcatenationEqualsEncode(t *testing.T) {
	bag := mustBag(t, map[string]int{"a": 3, "b": 7, "c": 11})
	params := GenerateParams(DefaultSeed, FileMode.SampleSize(), bag.Len())
	sketch := Hash(params, bag)

	bands := Bands(sketch, FileMode.HTNum(), FileMode.BandSize())
	require.Len(t, bands, FileMode.HTNum())

	var concat []byte
	for _, b := range bands {
		concat = append(concat, b...)
	}
	require.Equal(t, Encode(sketch), concat)
}

func TestBandsPanicsOnMismatchedSizes(t *testing.T) {
	sketch := make(Sketch, 10)
	require.Panics(t, func() {
		Bands(sketch, 3, 4)
	})
}
