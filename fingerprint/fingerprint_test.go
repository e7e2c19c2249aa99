package fingerprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sineSamples(freq float64, sr, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sr))
	}
	return s
}

func TestVectorizeShape(t *testing.T) {
	fp, err := Extract(sineSamples(440, 44100, 44100), 44100, 1.0)
	assert.NoError(t, err)
	assert.Len(t, fp.Vectorize(), 44)
}

func TestSelfSimilarityIsHundred(t *testing.T) {
	fp, err := Extract(sineSamples(440, 44100, 44100), 44100, 1.0)
	assert.NoError(t, err)
	sim := Similarity(fp, fp)
	assert.True(t, sim >= 99.99 && sim <= 100.0)
}

func TestSymmetry(t *testing.T) {
	a, err := Extract(sineSamples(440, 44100, 44100), 44100, 1.0)
	assert.NoError(t, err)
	b, err := Extract(sineSamples(220, 44100, 44100), 44100, 1.0)
	assert.NoError(t, err)
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestRangeWithMismatchedLengths(t *testing.T) {
	assert.Equal(t, 0.0, VectorSimilarity([]float64{1, 2}, []float64{1, 2, 3}))
}

func TestRangeIsBounded(t *testing.T) {
	a, err := Extract(sineSamples(440, 44100, 44100), 44100, 1.0)
	assert.NoError(t, err)
	b, err := Extract(sineSamples(7000, 44100, 44100), 44100, 1.0)
	assert.NoError(t, err)
	sim := Similarity(a, b)
	assert.True(t, sim >= 0 && sim <= 100)
}

func TestZeroVectorSimilarityIsZero(t *testing.T) {
	assert.Equal(t, 0.0, VectorSimilarity(make([]float64, 44), make([]float64, 44)))
}
