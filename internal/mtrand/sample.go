package mtrand

import "math"

// Uniform returns the next sample of Uniform(0,1).
func (s *Source) Uniform() float64 {
	return s.Float64()
}

// Gamma21 returns the next sample of Gamma(shape=2, scale=1), drawn as
// -ln(U1) - ln(U2) for two independent uniforms U1, U2 in (0, 1). This
// construction is exact for shape=2 because the sum of two Exp(1) variates
// is Gamma(2,1).
func (s *Source) Gamma21() float64 {
	u1 := s.Uniform()
	u2 := s.Uniform()
	return -math.Log(u1) - math.Log(u2)
}
