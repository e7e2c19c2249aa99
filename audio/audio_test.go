package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromSamplesComputesDuration(t *testing.T) {
	d := FromSamples(make([]float64, 44100), 44100)
	assert.InDelta(t, 1.0, d.Duration, 1e-9)
	assert.Equal(t, 1, d.Channels)
}

func TestGetRangeClampsToBounds(t *testing.T) {
	d := FromSamples(make([]float64, 44100), 44100)

	assert.Len(t, d.GetRange(-1, 0.5), 22050)
	assert.Len(t, d.GetRange(0.5, 100), 22050)
	assert.Nil(t, d.GetRange(0.9, 0.1))
}
