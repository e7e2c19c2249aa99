// Package spectral implements the per-frame spectral statistics (C4):
// centroid, bandwidth, and 85% rolloff, aggregated to an arithmetic mean
// across retained frames.
package spectral

import (
	"math"

	"waveprint/dsp"
)

// Stats holds the mean spectral statistics for a clip.
type Stats struct {
	Centroid  float64
	Bandwidth float64
	Rolloff   float64
}

const minEnergy = 1e-10

// Extract computes mean centroid/bandwidth/rolloff across all analysis
// frames of samples. Frames whose total magnitude is below 1e-10 are
// skipped. If no frame is retained (including audio shorter than one
// frame), Stats is the zero value.
func Extract(samples []float64, sampleRate int) Stats {
	front := dsp.Default()
	mags := make([]float64, front.NumBins())
	freqs := make([]float64, front.NumBins())
	for k := range freqs {
		freqs[k] = front.BinFreq(k, sampleRate)
	}

	var sumCentroid, sumBandwidth, sumRolloff float64
	var n int

	front.Frames(samples, func(_ int, spectrum []complex128) {
		dsp.Magnitude(spectrum, mags)

		var total float64
		for _, m := range mags {
			total += m
		}
		if total < minEnergy {
			return
		}

		var weighted float64
		for k, m := range mags {
			weighted += freqs[k] * m
		}
		centroid := weighted / total

		var variance float64
		for k, m := range mags {
			d := freqs[k] - centroid
			variance += d * d * m
		}
		bandwidth := math.Sqrt(variance / total)

		threshold := 0.85 * total
		var cum float64
		rolloff := freqs[len(freqs)-1]
		for k, m := range mags {
			cum += m
			if cum >= threshold {
				rolloff = freqs[k]
				break
			}
		}

		sumCentroid += centroid
		sumBandwidth += bandwidth
		sumRolloff += rolloff
		n++
	})

	if n == 0 {
		return Stats{}
	}
	fn := float64(n)
	return Stats{
		Centroid:  sumCentroid / fn,
		Bandwidth: sumBandwidth / fn,
		Rolloff:   sumRolloff / fn,
	}
}
