package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveprint/search"
)

func TestToCSVFormat(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")

	matches := []search.Match{
		{Filename: "sound.wav", Filepath: "/test/sound.wav", Score: 85.5, MatchStart: 1.0, MatchEnd: 2.5, FileDuration: 5.0},
	}
	require.NoError(t, ToCSV(matches, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	lines := splitLines(string(data))
	require.True(t, len(lines) >= 2)
	assert.Equal(t, "sound.wav,/test/sound.wav,85.5,1.000,2.500,1.500,5.000", lines[1])
}

func TestToMIDIEmptyFails(t *testing.T) {
	dir := t.TempDir()
	err := ToMIDI(nil, filepath.Join(dir, "out.mid"), MIDIOptions{})
	assert.Error(t, err)
}

func TestVelocityForScenario(t *testing.T) {
	assert.Equal(t, uint8(83), velocityFor(50))
	assert.Equal(t, uint8(127), velocityFor(100))
}

func TestToMarkersHeaderAndIndexing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	matches := []search.Match{
		{Filename: "a.wav", Filepath: "/a.wav", Score: 72.3, MatchStart: 65.123, MatchEnd: 67.123},
	}
	require.NoError(t, ToMarkers(matches, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# Audio Match Markers")
	assert.Contains(t, content, "[001] 01:05.123 - 01:07.123")
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return lines
}
