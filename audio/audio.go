// Package audio implements the Audio Loader (C1): decoding a file into a
// mono PCM sample buffer, slicing ranges of it, and reading lightweight
// metadata without a full decode.
package audio

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tidwall/gjson"

	"waveprint/internal/xerr"
)

// Data is a decoded, mono PCM buffer plus the declared format of its
// source file.
type Data struct {
	Samples    []float64
	SampleRate int
	Channels   int
	Duration   float64
}

// Load decodes path into mono PCM samples. Native WAV files are read
// directly; any other container is first transcoded to a temporary WAV
// with ffmpeg. Unreadable files fail with an AudioLoadError.
func Load(path string) (*Data, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, xerr.AudioLoad(fmt.Sprintf("cannot open %s", path), err)
	}

	wavPath := path
	if strings.ToLower(filepath.Ext(path)) != ".wav" {
		tmp, err := transcodeToWAV(path)
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp)
		wavPath = tmp
	}

	return decodeWAV(wavPath)
}

// FromSamples wraps an already-decoded mono PCM buffer without touching
// the filesystem.
func FromSamples(samples []float64, sampleRate int) *Data {
	return &Data{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   float64(len(samples)) / float64(sampleRate),
	}
}

// GetRange returns the samples between startSec and endSec, clamped to the
// buffer's bounds.
func (d *Data) GetRange(startSec, endSec float64) []float64 {
	start := int(startSec * float64(d.SampleRate))
	end := int(endSec * float64(d.SampleRate))
	if start < 0 {
		start = 0
	}
	if end > len(d.Samples) {
		end = len(d.Samples)
	}
	if start >= end {
		return nil
	}
	return d.Samples[start:end]
}

// Meta is the lightweight descriptor returned by Metadata, computed
// without a full decode.
type Meta struct {
	Duration   float64
	SampleRate int
	Channels   int
	Artist     string
	Title      string
}

// Metadata shells out to ffprobe for duration and tag information without
// decoding the audio payload.
func Metadata(path string) (*Meta, error) {
	out, err := exec.Command(
		"ffprobe", "-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	).Output()
	if err != nil {
		return nil, xerr.AudioLoad(fmt.Sprintf("ffprobe failed for %s", path), err)
	}

	result := gjson.ParseBytes(out)
	meta := &Meta{
		Duration:   result.Get("format.duration").Float(),
		SampleRate: int(result.Get("streams.0.sample_rate").Int()),
		Channels:   int(result.Get("streams.0.channels").Int()),
		Artist:     result.Get("format.tags.artist").String(),
		Title:      result.Get("format.tags.title").String(),
	}
	return meta, nil
}

func transcodeToWAV(inputPath string) (string, error) {
	tmp, err := os.CreateTemp("", "waveprint-*.wav")
	if err != nil {
		return "", xerr.IO("failed to create temp file for transcode", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	cmd := exec.Command(
		"ffmpeg", "-y",
		"-i", inputPath,
		"-c", "pcm_s16le",
		tmpPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(tmpPath)
		return "", xerr.AudioLoad(fmt.Sprintf("ffmpeg transcode failed: %s", strings.TrimSpace(string(out))), err)
	}
	return tmpPath, nil
}

func decodeWAV(path string) (*Data, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, xerr.AudioLoad(fmt.Sprintf("cannot open %s", path), err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, xerr.AudioLoad(fmt.Sprintf("%s is not a valid WAV file", path), nil)
	}

	format := decoder.Format()
	sampleRate := int(format.SampleRate)
	channels := int(format.NumChannels)

	const chunkFrames = 8192
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:   make([]int, chunkFrames*channels),
	}

	var samples []float64
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil || n == 0 {
			break
		}
		frames := n / channels
		for i := 0; i < frames; i++ {
			idx := i * channels
			var sum float64
			for c := 0; c < channels; c++ {
				sum += float64(buf.Data[idx+c])
			}
			samples = append(samples, (sum/float64(channels))/32768.0)
		}
	}

	return &Data{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   float64(len(samples)) / float64(sampleRate),
	}, nil
}
