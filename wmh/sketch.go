package wmh

import (
	"math"

	"github.com/afcarl/gemini/feature"
)

// Row is one sketch row (k*, t*): the token index minimizing the CWS score
// for a given sample, and its scaled "time" component reinterpreted as a
// u64 bit pattern.
type Row struct {
	K uint64
	T uint64
}

// Sketch is the sample_size x 2 matrix produced by Hash.
type Sketch []Row

// Empty reports whether every row is the zero row (0, 0), the sentinel
// value assigned to an empty bag's sketch.
func (s Sketch) Empty() bool {
	for _, r := range s {
		if r.K != 0 || r.T != 0 {
			return false
		}
	}
	return true
}

// Hash computes the Weighted MinHash sketch of bag under params using
// consistent weighted sampling.
//
// An empty bag (no indices with weight > 0) yields a sketch of rows (0, 0)
// and must not be indexed; callers check Bag.Empty before hashing.
func Hash(params *Params, bag *feature.Bag) Sketch {
	sketch := make(Sketch, params.SampleSize())

	if bag.Empty() {
		return sketch // all rows are the zero value (0, 0)
	}

	indices := bag.Indices()

	for s := 0; s < params.SampleSize(); s++ {
		var (
			bestI    uint32
			bestLnA  float64
			bestT    float64
			haveBest bool
		)

		for _, i := range indices {
			v := float64(bag.Weight(i))
			if v <= 0 {
				continue
			}

			r := params.at(params.rs, s, int(i))
			lnC := params.at(params.lnCs, s, int(i))
			beta := params.at(params.betas, s, int(i))

			t := math.Floor(math.Log(v)/r + beta)
			lnY := r * (t - beta)
			lnA := lnC - lnY - r

			if !haveBest || lnA < bestLnA {
				haveBest = true
				bestLnA = lnA
				bestI = i
				bestT = t
			}
			// Ties broken by lowest index wins: indices are visited in
			// ascending order and the strict "<" above keeps the first
			// (lowest-index) winner on exact ties.
		}

		sketch[s] = Row{
			K: uint64(bestI),
			T: int64ToBits(bestT),
		}
	}

	return sketch
}

// int64ToBits reinterprets the floor of t (which may be negative) as a u64
// bit pattern via standard two's-complement truncation: t* may be negative,
// and is reinterpreted bitwise as u64.
func int64ToBits(t float64) uint64 {
	return uint64(int64(t))
}
