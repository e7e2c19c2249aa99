// Package chroma implements the 12-bin pitch-class chroma mapping and the
// time-domain energy features (RMS, zero-crossing rate) that make up C5.
package chroma

import (
	"math"

	"waveprint/dsp"
)

const NBins = 12

// Extract accumulates |X[k]| for bins k in [1, n_fft/2) into 12 pitch-class
// bins via MIDI-note mapping, then normalizes by the max bin. Input shorter
// than one frame yields all zeros. The MIDI-to-bin conversion truncates
// toward zero (Go's int() conversion), matching the source behavior this
// system preserves rather than flooring.
func Extract(samples []float64, sampleRate int) [NBins]float64 {
	var bins [NBins]float64

	front := dsp.Default()
	mags := make([]float64, front.NumBins())

	front.Frames(samples, func(_ int, spectrum []complex128) {
		dsp.Magnitude(spectrum, mags)
		for k := 1; k < len(mags)-1; k++ {
			f := front.BinFreq(k, sampleRate)
			if f <= 0 {
				continue
			}
			m := 12*math.Log2(f/440) + 69
			bin := ((int(m) % NBins) + NBins) % NBins
			bins[bin] += mags[k]
		}
	})

	max := 0.0
	for _, v := range bins {
		if v > max {
			max = v
		}
	}
	if max > 0 {
		for i := range bins {
			bins[i] /= max
		}
	}
	return bins
}

// RMS computes the mean and population standard deviation of per-frame
// root-mean-square amplitude, framed with the shared n_fft/hop. Frames
// with fewer than 64 samples (a short trailing partial frame) are
// skipped; if no frame is retained, RMS returns (0, 0).
func RMS(samples []float64) (mean, std float64) {
	const frame = dsp.NFFT
	const hop = dsp.Hop

	var sum, sumSq float64
	var n int
	for start := 0; start < len(samples); start += hop {
		end := start + frame
		if end > len(samples) {
			end = len(samples)
		}
		seg := samples[start:end]
		if len(seg) < 64 {
			continue
		}

		var sq float64
		for _, s := range seg {
			sq += s * s
		}
		r := math.Sqrt(sq / float64(len(seg)))
		sum += r
		sumSq += r * r
		n++
	}

	if n == 0 {
		return 0, 0
	}
	fn := float64(n)
	mean = sum / fn
	variance := sumSq/fn - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// ZeroCrossingRate returns the fraction of adjacent-sample sign changes,
// treating zero as non-negative. N < 2 returns 0.
func ZeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	sign := func(x float64) bool { return x >= 0 }

	var crossings int
	prev := sign(samples[0])
	for _, s := range samples[1:] {
		cur := sign(s)
		if cur != prev {
			crossings++
		}
		prev = cur
	}
	return float64(crossings) / float64(len(samples)-1)
}
