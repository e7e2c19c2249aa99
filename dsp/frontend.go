// Package dsp provides the framed, windowed FFT shared by the MFCC,
// spectral statistics, and chroma extractors, so the framing/windowing/FFT
// logic lives in exactly one place.
package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// NFFT and Hop are shared by every extractor in this system: spec.md calls
// for n_fft=2048 with hop=512 for the spectral/chroma path, and MFCC uses
// hop = n_fft/4, which is also 512 — one frontend configuration serves all
// three consumers.
const (
	NFFT = 2048
	Hop  = 512
)

// HannWindow returns a Hann window of length n: w[i] = 0.5*(1-cos(2*pi*i/(n-1))).
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Frontend frames a sample buffer with a fixed window size and hop, applies
// a Hann window, and computes the one-sided FFT spectrum of each frame.
type Frontend struct {
	windowSize int
	hop        int
	window     []float64
	fft        *fourier.FFT
}

// NewFrontend builds a Frontend for the given window size and hop.
func NewFrontend(windowSize, hop int) *Frontend {
	return &Frontend{
		windowSize: windowSize,
		hop:        hop,
		window:     HannWindow(windowSize),
		fft:        fourier.NewFFT(windowSize),
	}
}

// Default returns the shared n_fft=2048/hop=512 frontend used by MFCC,
// spectral statistics, and chroma extraction.
func Default() *Frontend { return NewFrontend(NFFT, Hop) }

// WindowSize returns n_fft.
func (f *Frontend) WindowSize() int { return f.windowSize }

// NumBins returns n_fft/2+1, the number of one-sided spectrum bins.
func (f *Frontend) NumBins() int { return f.windowSize/2 + 1 }

// BinFreq returns the center frequency in Hz of bin k for sampleRate.
func (f *Frontend) BinFreq(k, sampleRate int) float64 {
	return float64(k) * float64(sampleRate) / float64(f.windowSize)
}

// NumFrames returns how many frames Frames will emit for a buffer of the
// given length, without doing any FFT work.
func (f *Frontend) NumFrames(numSamples int) int {
	if numSamples < f.windowSize {
		return 0
	}
	return 1 + (numSamples-f.windowSize)/f.hop
}

// Frames calls fn once per analysis frame with that frame's one-sided
// complex spectrum (length NumBins()). The slice passed to fn is reused
// across calls; fn must not retain it. If samples is shorter than the
// window, fn is never called.
func (f *Frontend) Frames(samples []float64, fn func(frameIndex int, spectrum []complex128)) {
	if len(samples) < f.windowSize {
		return
	}
	windowed := make([]float64, f.windowSize)
	coeffs := make([]complex128, f.NumBins())
	idx := 0
	for start := 0; start+f.windowSize <= len(samples); start += f.hop {
		frame := samples[start : start+f.windowSize]
		for i, s := range frame {
			windowed[i] = s * f.window[i]
		}
		f.fft.Coefficients(coeffs, windowed)
		fn(idx, coeffs)
		idx++
	}
}

// Magnitude fills dst[i] = |spectrum[i]|. dst and spectrum must be the
// same length.
func Magnitude(spectrum []complex128, dst []float64) {
	for i, c := range spectrum {
		dst[i] = cmplx.Abs(c)
	}
}
