package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmptyReturnsZero(t *testing.T) {
	s := Extract(nil, 44100)
	assert.Equal(t, Stats{}, s)
}

func TestExtractTooShortReturnsZero(t *testing.T) {
	s := Extract(make([]float64, 100), 44100)
	assert.Equal(t, Stats{}, s)
}

func TestExtractSineCentroidNearFrequency(t *testing.T) {
	const sr = 44100
	const freq = 2000.0
	samples := make([]float64, sr)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / sr)
	}
	s := Extract(samples, sr)
	assert.InDelta(t, freq, s.Centroid, 50)
	assert.True(t, s.Bandwidth >= 0)
	assert.True(t, s.Rolloff >= 0)
}
