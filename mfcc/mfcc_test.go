package mfcc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"waveprint/internal/xerr"
)

func TestExtractTooShortFails(t *testing.T) {
	_, _, err := Extract(make([]float64, 100), 44100)
	assert.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.KindFingerprint))
}

func TestExtractShapeAndFiniteness(t *testing.T) {
	const sr = 44100
	samples := make([]float64, sr)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / sr)
	}

	mean, std, err := Extract(samples, sr)
	assert.NoError(t, err)
	for k := 0; k < NMFCC; k++ {
		assert.False(t, math.IsNaN(mean[k]))
		assert.False(t, math.IsNaN(std[k]))
		assert.True(t, std[k] >= 0)
	}
}

func TestFilterBankRowsAreNonNegativeAndBounded(t *testing.T) {
	filters := filterBank(2048, 44100)
	assert.Len(t, filters, NMels)
	for _, row := range filters {
		for _, w := range row {
			assert.True(t, w >= 0 && w <= 1.0+1e-9)
		}
	}
}

func TestDCTConstantInputConcentratesInDCTerm(t *testing.T) {
	x := make([]float64, 40)
	for i := range x {
		x[i] = 1
	}
	out := dctII(x)
	assert.True(t, math.Abs(out[0]) > math.Abs(out[1]))
}
