package mfcc

import (
	"math"

	"waveprint/dsp"
	"waveprint/internal/xerr"
)

// Extract computes the mean and population standard deviation of the first
// NMFCC cepstral coefficients across every analysis frame of samples.
// Audio shorter than one frame fails with a FingerprintError.
func Extract(samples []float64, sampleRate int) (mean, std [NMFCC]float64, err error) {
	front := dsp.Default()
	if front.NumFrames(len(samples)) < 1 {
		return mean, std, xerr.Fingerprint("audio too short for MFCC extraction", nil)
	}

	filters := filterBank(front.WindowSize(), sampleRate)
	mags := make([]float64, front.NumBins())
	melEnergy := make([]float64, NMels)

	var sums [NMFCC]float64
	var sumsSq [NMFCC]float64
	n := 0

	front.Frames(samples, func(_ int, spectrum []complex128) {
		dsp.Magnitude(spectrum, mags)
		for i := range mags {
			mags[i] *= mags[i]
		}

		for m, filt := range filters {
			var e float64
			for b, w := range filt {
				e += w * mags[b]
			}
			melEnergy[m] = math.Log(math.Max(e, 1e-10))
		}

		coeffs := dctII(melEnergy)
		for k := 0; k < NMFCC; k++ {
			sums[k] += coeffs[k]
			sumsSq[k] += coeffs[k] * coeffs[k]
		}
		n++
	})

	fn := float64(n)
	for k := 0; k < NMFCC; k++ {
		mean[k] = sums[k] / fn
		variance := sumsSq[k]/fn - mean[k]*mean[k]
		if variance < 0 {
			variance = 0
		}
		std[k] = math.Sqrt(variance)
	}
	return mean, std, nil
}
