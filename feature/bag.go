// Package feature builds a FeatureBag — a dense, vocabulary-indexed weight
// vector — from a stream of (token, raw_weight) pairs emitted by the
// external feature-extraction service (see astsvc/featuresvc).
package feature

import (
	"math"
	"sort"

	"github.com/afcarl/gemini/vocab"
)

// Feature is a single (token, raw_weight) observation as emitted by the
// batched extract RPC. RawWeight must be positive.
type Feature struct {
	Token     string
	RawWeight uint32
}

// Bag is a FeatureBag: a mapping index -> weight over [0, k), dense-indexed
// by u32 weight. Only indices with non-zero weight are materialized;
// absent indices implicitly carry weight 0.
type Bag struct {
	k      int
	values map[uint32]uint32
}

// Len returns the vocabulary size this bag is indexed against (k).
func (b *Bag) Len() int { return b.k }

// Weight returns the accumulated weight at vocabulary index i.
func (b *Bag) Weight(i uint32) uint32 { return b.values[i] }

// Empty reports whether the bag has no weighted indices, a condition the
// sketcher must special-case.
func (b *Bag) Empty() bool { return len(b.values) == 0 }

// Indices returns the set of indices with non-zero weight, in ascending
// order. The caller owns the returned slice.
func (b *Bag) Indices() []uint32 {
	out := make([]uint32, 0, len(b.values))
	for i := range b.values {
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Build maps a stream of raw (token, weight) features into a FeatureBag
// using voc. Tokens absent from voc are silently dropped.
// The accumulation rule is bag[i] += raw_weight * df_weight(tokens[i]);
// accumulation happens in float64 and is rounded to the nearest u32 once per
// index so that many small contributions to the same feature don't each
// round away to zero.
func Build(voc *vocab.DocFreq, features []Feature) *Bag {
	acc := make(map[uint32]float64)
	for _, f := range features {
		idx, ok := voc.TokenIndex(f.Token)
		if !ok {
			continue
		}
		acc[uint32(idx)] += float64(f.RawWeight) * voc.Weight(f.Token)
	}

	values := make(map[uint32]uint32, len(acc))
	for idx, w := range acc {
		rounded := uint32(math.Round(w))
		if rounded > 0 {
			values[idx] = rounded
		}
	}

	return &Bag{k: voc.Len(), values: values}
}
