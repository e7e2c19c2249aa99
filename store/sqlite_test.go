package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveprint/fingerprint"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddSoundIsIdempotentOnFilepath(t *testing.T) {
	s := openTestStore(t)

	sound := Sound{Filepath: "/a.wav", Filename: "a.wav", Duration: 1, SampleRate: 44100, Channels: 1, Format: "wav"}
	id1, err := s.AddSound(sound)
	require.NoError(t, err)
	id2, err := s.AddSound(sound)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAddSoundReingestReturnsSameIDAfterOtherInserts(t *testing.T) {
	s := openTestStore(t)

	idA, err := s.AddSound(Sound{Filepath: "/a.wav", Filename: "a.wav", Duration: 1, SampleRate: 44100, Channels: 1, Format: "wav"})
	require.NoError(t, err)
	idB, err := s.AddSound(Sound{Filepath: "/b.wav", Filename: "b.wav", Duration: 1, SampleRate: 44100, Channels: 1, Format: "wav"})
	require.NoError(t, err)
	require.NotEqual(t, idA, idB)

	reAddedA, err := s.AddSound(Sound{Filepath: "/a.wav", Filename: "a.wav", Duration: 1, SampleRate: 44100, Channels: 1, Format: "wav"})
	require.NoError(t, err)
	assert.Equal(t, idA, reAddedA)

	fpA := &fingerprint.Fingerprint{}
	fpA.MFCCMean[0] = 1
	require.NoError(t, s.StoreFingerprint(reAddedA, fpA))

	_, ok, err := s.GetFingerprint(idB)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreFingerprintRoundTrip(t *testing.T) {
	s := openTestStore(t)

	id, err := s.AddSound(Sound{Filepath: "/b.wav", Filename: "b.wav", Duration: 2, SampleRate: 44100, Channels: 1, Format: "wav"})
	require.NoError(t, err)

	fp := &fingerprint.Fingerprint{Duration: 2, SampleRate: 44100}
	fp.MFCCMean[0] = 1.5
	require.NoError(t, s.StoreFingerprint(id, fp))

	got, ok, err := s.GetFingerprint(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fp.Vectorize(), got.Vectorize())
}

func TestRemoveSoundCascadesFingerprint(t *testing.T) {
	s := openTestStore(t)

	id, err := s.AddSound(Sound{Filepath: "/c.wav", Filename: "c.wav", Duration: 1, SampleRate: 44100, Channels: 1, Format: "wav"})
	require.NoError(t, err)
	require.NoError(t, s.StoreFingerprint(id, &fingerprint.Fingerprint{}))

	require.NoError(t, s.RemoveSound(id))

	_, ok, err := s.GetFingerprint(id)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestGetAllFingerprintsSkipsCorruptPayload(t *testing.T) {
	s := openTestStore(t)

	id, err := s.AddSound(Sound{Filepath: "/d.wav", Filename: "d.wav", Duration: 1, SampleRate: 44100, Channels: 1, Format: "wav"})
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO fingerprints (sound_id, payload) VALUES (?, ?)`, id, `{"mfcc_mean":`)
	require.NoError(t, err)

	all, err := s.GetAllFingerprints()
	require.NoError(t, err)
	assert.Empty(t, all)
}
