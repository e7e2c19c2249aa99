// Package mfcc implements the Mel-Frequency Cepstral Coefficient extractor
// (C3): a mel filterbank over the power spectrum, log compression, and a
// DCT-II, aggregated to per-coefficient mean/std across all frames of a
// clip.
package mfcc

import "math"

const (
	NMels = 40
	NMFCC = 13
)

func hzToMel(f float64) float64 {
	return 2595 * math.Log10(1+f/700)
}

func melToHz(m float64) float64 {
	return 700 * (math.Pow(10, m/2595) - 1)
}

// filterBank builds NMels triangular filters over bins [0, nfft/2], each
// row weighted by normalized distance from its left/right edge (slope
// normalization, not area normalization).
func filterBank(nfft, sampleRate int) [][]float64 {
	nyquist := float64(sampleRate) / 2
	melLo := hzToMel(0)
	melHi := hzToMel(nyquist)

	points := make([]float64, NMels+2)
	for i := range points {
		points[i] = melLo + (melHi-melLo)*float64(i)/float64(NMels+1)
	}

	maxBin := nfft / 2
	bins := make([]int, NMels+2)
	for i, m := range points {
		hz := melToHz(m)
		b := int(math.Floor(hz * float64(nfft) / float64(sampleRate)))
		if b > maxBin {
			b = maxBin
		}
		if b < 0 {
			b = 0
		}
		bins[i] = b
	}

	filters := make([][]float64, NMels)
	for i := range filters {
		filters[i] = make([]float64, maxBin+1)
		left, center, right := bins[i], bins[i+1], bins[i+2]

		for b := left; b < center; b++ {
			if center != left {
				filters[i][b] = float64(b-left) / float64(center-left)
			}
		}
		for b := center; b < right; b++ {
			if right != center {
				filters[i][b] = float64(right-b) / float64(right-center)
			}
		}
		if center >= 0 && center <= maxBin {
			filters[i][center] = 1
		}
	}
	return filters
}
