package chroma

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractShortInputIsZero(t *testing.T) {
	bins := Extract(make([]float64, 100), 44100)
	assert.Equal(t, [NBins]float64{}, bins)
}

func TestExtractNormalizedToMaxOne(t *testing.T) {
	const sr = 44100
	samples := make([]float64, sr)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / sr)
	}
	bins := Extract(samples, sr)

	max := 0.0
	for _, v := range bins {
		if v > max {
			max = v
		}
	}
	assert.InDelta(t, 1.0, max, 1e-9)
}

func TestRMSEmptyIsZero(t *testing.T) {
	mean, std := RMS(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, std)
}

func TestRMSConstantSignal(t *testing.T) {
	samples := make([]float64, 5000)
	for i := range samples {
		samples[i] = 0.5
	}
	mean, std := RMS(samples)
	assert.InDelta(t, 0.5, mean, 1e-9)
	assert.InDelta(t, 0.0, std, 1e-9)
}

func TestZeroCrossingRateBounds(t *testing.T) {
	assert.Equal(t, 0.0, ZeroCrossingRate(nil))
	assert.Equal(t, 0.0, ZeroCrossingRate([]float64{1}))

	alternating := make([]float64, 100)
	for i := range alternating {
		if i%2 == 0 {
			alternating[i] = 1
		} else {
			alternating[i] = -1
		}
	}
	zcr := ZeroCrossingRate(alternating)
	assert.True(t, zcr >= 0 && zcr <= 1)
	assert.InDelta(t, 1.0, zcr, 1e-9)
}
