package waveprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndCloseSQLite(t *testing.T) {
	lib, err := Open(":memory:")
	require.NoError(t, err)
	defer lib.Close()

	n, err := lib.GetSoundCount()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestFindSimilarFromSamplesOnEmptyStore(t *testing.T) {
	lib, err := Open(":memory:")
	require.NoError(t, err)
	defer lib.Close()

	samples := make([]float64, 44100)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
	}

	matches, err := lib.FindSimilarFromSamples(samples, 44100, 50, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
