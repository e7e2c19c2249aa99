package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveprint/fingerprint"
	"waveprint/store"
)

func sineSamples(freq float64, sr, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sr))
	}
	return s
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFindSimilarEmptyStoreReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	e := New(s)

	q, err := fingerprint.Extract(sineSamples(440, 44100, 44100), 44100, 1.0)
	require.NoError(t, err)

	matches, err := e.FindSimilar(q, 50, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindSimilarThresholdFilter(t *testing.T) {
	s := newTestStore(t)
	e := New(s)

	sineFp, err := fingerprint.Extract(sineSamples(440, 44100, 44100), 44100, 1.0)
	require.NoError(t, err)

	noise := make([]float64, 44100)
	seed := uint32(1)
	for i := range noise {
		seed = seed*1664525 + 1013904223
		noise[i] = (float64(seed%2000) - 1000) / 1000
	}
	noiseFp, err := fingerprint.Extract(noise, 44100, 1.0)
	require.NoError(t, err)

	sineID, err := s.AddSound(store.Sound{Filepath: "/sine.wav", Filename: "sine.wav", Duration: 1, SampleRate: 44100, Channels: 1, Format: "wav"})
	require.NoError(t, err)
	require.NoError(t, s.StoreFingerprint(sineID, sineFp))

	noiseID, err := s.AddSound(store.Sound{Filepath: "/noise.wav", Filename: "noise.wav", Duration: 1, SampleRate: 44100, Channels: 1, Format: "wav"})
	require.NoError(t, err)
	require.NoError(t, s.StoreFingerprint(noiseID, noiseFp))

	matches, err := e.FindSimilar(sineFp, 90, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "sine.wav", matches[0].Filename)
}
