package mfcc

import "math"

// dctII computes the type-II discrete cosine transform of x, scaled by
// sqrt(2/N) with the DC term (k=0) additionally scaled by sqrt(0.5) so the
// basis is orthonormal.
func dctII(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	scale := math.Sqrt(2 / float64(n))
	for k := 0; k < n; k++ {
		var sum float64
		for i, xi := range x {
			sum += xi * math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*float64(n)))
		}
		out[k] = sum * scale
	}
	out[0] *= math.Sqrt(0.5)
	return out
}
