package export

import (
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"waveprint/internal/xerr"
	"waveprint/search"
)

const (
	defaultTicksPerBeat = 480
	defaultBaseNote     = 60
	maxMatchTracks      = 15
)

// MIDIOptions configures ToMIDI. Zero values fall back to the defaults
// named in the external interfaces section.
type MIDIOptions struct {
	BPM          float64
	TicksPerBeat uint16
	BaseNote     uint8
}

func (o MIDIOptions) withDefaults() MIDIOptions {
	if o.BPM <= 0 {
		o.BPM = 120
	}
	if o.TicksPerBeat == 0 {
		o.TicksPerBeat = defaultTicksPerBeat
	}
	return o
}

func secondsToTicks(seconds, bpm float64, ticksPerBeat uint16) uint32 {
	ticksPerSecond := (bpm / 60.0) * float64(ticksPerBeat)
	return uint32(math.Round(seconds * ticksPerSecond))
}

// velocityFor truncates rather than rounds: spec.md's formula has no
// round() around the velocity expression, only around tick positions.
func velocityFor(score float64) uint8 {
	v := 40 + (score/100)*87
	if v < 40 {
		v = 40
	}
	if v > 127 {
		v = 127
	}
	return uint8(v)
}

// ToMIDI renders matches as a format-1 Standard MIDI File: track 0 carries
// a single tempo event, followed by up to 15 match tracks (one NoteOn/
// NoteOff pair each). An empty match list fails with a MidiError.
func ToMIDI(matches []search.Match, path string, opts MIDIOptions) error {
	if len(matches) == 0 {
		return xerr.MIDI("no matches to export", nil)
	}
	opts = opts.withDefaults()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.TicksPerBeat)

	var tempoTrack smf.Track
	tempoTrack.Add(0, smf.MetaTempo(opts.BPM))
	tempoTrack.Close(0)
	s.Add(tempoTrack)

	tracks := matches
	if len(tracks) > maxMatchTracks {
		tracks = tracks[:maxMatchTracks]
	}

	baseNote := opts.BaseNote
	if baseNote == 0 {
		baseNote = defaultBaseNote
	}

	for i, m := range tracks {
		var track smf.Track

		startTicks := secondsToTicks(m.MatchStart, opts.BPM, opts.TicksPerBeat)
		duration := m.MatchEnd - m.MatchStart
		durationTicks := secondsToTicks(duration, opts.BPM, opts.TicksPerBeat)
		if durationTicks < 1 {
			durationTicks = 1
		}

		key := int(baseNote) + i
		if key > 127 {
			key = 127
		}
		velocity := velocityFor(m.Score)

		track.Add(startTicks, midi.NoteOn(0, uint8(key), velocity))
		track.Add(durationTicks, midi.NoteOff(0, uint8(key)))
		track.Close(0)
		s.Add(track)
	}

	return writeAtomic(path, func(f *os.File) error {
		_, err := s.WriteTo(f)
		return err
	})
}
