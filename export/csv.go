// Package export implements the three match exporters (CSV, markers,
// MIDI) described in the external interfaces section: formats are
// byte-exact and intentionally rigid, since downstream tooling parses
// them.
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"waveprint/internal/xerr"
	"waveprint/search"
)

var csvHeader = []string{
	"Filename", "Filepath", "Score", "Match Start (s)", "Match End (s)", "Match Duration (s)", "File Duration (s)",
}

// ToCSV writes matches to path in the fixed column order, score to one
// decimal and times to three. The file is written atomically via a
// temp-then-rename so a failure never leaves a partial file at path.
func ToCSV(matches []search.Match, path string) error {
	return writeAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			return err
		}
		for _, m := range matches {
			row := []string{
				m.Filename,
				m.Filepath,
				fmt.Sprintf("%.1f", m.Score),
				fmt.Sprintf("%.3f", m.MatchStart),
				fmt.Sprintf("%.3f", m.MatchEnd),
				fmt.Sprintf("%.3f", m.MatchEnd-m.MatchStart),
				fmt.Sprintf("%.3f", m.FileDuration),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp("", "waveprint-export-*")
	if err != nil {
		return xerr.IO("failed to create temp export file", err)
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return xerr.IO("failed to write export file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return xerr.IO("failed to close export file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return xerr.IO("failed to finalize export file", err)
	}
	return nil
}
