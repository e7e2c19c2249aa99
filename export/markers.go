package export

import (
	"fmt"
	"os"

	"waveprint/search"
)

const markerHeader = "# Audio Match Markers\n# Format: Start(s) | End(s) | Score | Filename\n# -------------------------------------------\n\n"

func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := int(seconds) / 60
	rem := seconds - float64(minutes*60)
	return fmt.Sprintf("%02d:%06.3f", minutes, rem)
}

// ToMarkers writes matches as a human-readable marker list.
func ToMarkers(matches []search.Match, path string) error {
	return writeAtomic(path, func(f *os.File) error {
		if _, err := f.WriteString(markerHeader); err != nil {
			return err
		}
		for i, m := range matches {
			line := fmt.Sprintf(
				"[%03d] %s - %s | %.1f%% | %s\n      Path: %s\n",
				i+1,
				formatTimestamp(m.MatchStart), formatTimestamp(m.MatchEnd),
				m.Score, m.Filename, m.Filepath,
			)
			if _, err := f.WriteString(line); err != nil {
				return err
			}
		}
		return nil
	})
}
