package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHannWindowEndpoints(t *testing.T) {
	w := HannWindow(8)
	assert.InDelta(t, 0.0, w[0], 1e-9)
	assert.InDelta(t, 1.0, w[len(w)/2], 0.15)
}

func TestFrontendNumFrames(t *testing.T) {
	f := NewFrontend(2048, 512)
	assert.Equal(t, 0, f.NumFrames(100))
	assert.Equal(t, 1, f.NumFrames(2048))
	assert.Equal(t, 1+(4096-2048)/512, f.NumFrames(4096))
}

func TestFramesEmittedForShortInput(t *testing.T) {
	f := NewFrontend(2048, 512)
	calls := 0
	f.Frames(make([]float64, 100), func(int, []complex128) { calls++ })
	assert.Equal(t, 0, calls)
}

func TestFramesSineToneConcentratesEnergy(t *testing.T) {
	const sr = 44100
	const freq = 1000.0
	samples := make([]float64, 4096)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / sr)
	}

	f := NewFrontend(2048, 512)
	mags := make([]float64, f.NumBins())
	var seen int
	f.Frames(samples, func(_ int, spectrum []complex128) {
		Magnitude(spectrum, mags)
		seen++

		peak := 0
		for i, m := range mags {
			if m > mags[peak] {
				peak = i
			}
			_ = m
		}
		peakFreq := f.BinFreq(peak, sr)
		assert.InDelta(t, freq, peakFreq, sr/float64(f.WindowSize()))
	})
	assert.True(t, seen > 0)
}
