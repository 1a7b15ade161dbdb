// Package wmh implements the Weighted MinHash (consistent weighted
// sampling) sketcher and the band partitioner built on top of it.
package wmh

import "github.com/afcarl/gemini/internal/mtrand"

// DefaultSeed is the reference seed fixed for parameter table generation
// (Mersenne Twister 19937, seed 1).
const DefaultSeed = 1

// Params holds the static randomness {rs, ln_cs, betas}: three
// sample_size x k tables stored row-major for cache locality in the hot
// argmin loop of Hash.
type Params struct {
	sampleSize int
	k          int
	rs         []float64
	lnCs       []float64
	betas      []float64
}

// SampleSize returns the number of independent hash samples (sketch rows).
func (p *Params) SampleSize() int { return p.sampleSize }

// K returns the vocabulary size these tables were generated for.
func (p *Params) K() int { return p.k }

func (p *Params) at(table []float64, s, i int) float64 {
	return table[s*p.k+i]
}

// GenerateParams deterministically derives the rs/ln_cs/betas tables for a
// given (sampleSize, k) from seed. Identical (seed, sampleSize, k) inputs
// always produce byte-identical tables: draws proceed row by row (s outer,
// i inner), and for each (s, i) rs is drawn before ln_cs before betas.
func GenerateParams(seed uint32, sampleSize, k int) *Params {
	src := mtrand.New(seed)

	p := &Params{
		sampleSize: sampleSize,
		k:          k,
		rs:         make([]float64, sampleSize*k),
		lnCs:       make([]float64, sampleSize*k),
		betas:      make([]float64, sampleSize*k),
	}

	for s := 0; s < sampleSize; s++ {
		for i := 0; i < k; i++ {
			idx := s*k + i
			p.rs[idx] = src.Gamma21()
			p.lnCs[idx] = src.Gamma21()
			p.betas[idx] = src.Uniform()
		}
	}

	return p
}
