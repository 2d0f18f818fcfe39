// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"os"
)

// Track is the immutable result of a finished mix: the rendered buffer plus
// the format it was mixed at.
type Track struct {
	samples     []float32
	frameRate   int
	channels    int
	sampleWidth int
}

func (t *Track) Samples() []float32 { return t.samples }
func (t *Track) FrameRate() int     { return t.frameRate }
func (t *Track) Channels() int      { return t.channels }
func (t *Track) SampleWidth() int   { return t.sampleWidth }

// DurationSeconds returns the track length in seconds.
func (t *Track) DurationSeconds() float64 {
	if t.frameRate == 0 || t.channels == 0 {
		return 0
	}
	frames := len(t.samples) / t.channels
	return float64(frames) / float64(t.frameRate)
}

// EncodeParams carries the target format parameters handed to a
// TrackEncoder.
type EncodeParams struct {
	SampleRate  int
	Channels    int
	BitDepth    int // bits per sample
	BitrateKbps float64
	Tags        map[string]string
}

// TrackEncoder writes a rendered sample buffer to its final on-disk format.
// Encoders are free to ignore parameters that do not apply to their format
// (e.g. bitrate for uncompressed PCM).
type TrackEncoder interface {
	EncodeTrack(w io.WriteSeeker, samples []float32, p EncodeParams) error
}

// SaveOptions selects the export format parameters for Track.Save.
// Zero values fall back to the track's own format.
type SaveOptions struct {
	SampleRate    int
	Channels      int
	SampleWidth   int // bytes per sample
	TargetBitrate int // kbps
	TargetSize    int // kB; 0 means no size target
	Tags          map[string]string
}

// bitrateFor derives the export bitrate in kbps: when a size target is
// given, the bitrate is capped so the output fits, otherwise the target
// bitrate is used as-is.
func (t *Track) bitrateFor(opts SaveOptions) float64 {
	bitrate := float64(opts.TargetBitrate)
	if opts.TargetSize > 0 {
		seconds := t.DurationSeconds()
		if seconds > 0 {
			sized := float64(opts.TargetSize) * 8 / seconds
			if sized < bitrate {
				bitrate = sized
			}
		}
	}
	return bitrate
}

// Save syncs the track to the requested output format and writes it to
// path using enc.
func (t *Track) Save(path string, opts SaveOptions, enc TrackEncoder) error {
	if opts.SampleRate == 0 {
		opts.SampleRate = t.frameRate
	}
	if opts.Channels == 0 {
		opts.Channels = t.channels
	}
	if opts.SampleWidth == 0 {
		opts.SampleWidth = t.sampleWidth
	}

	sound := &Sound{Samples: t.samples, SampleRate: t.frameRate, Channels: t.channels}
	synced, err := sound.Sync(opts.SampleRate, opts.Channels)
	if err != nil {
		return fmt.Errorf("sync track: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	p := EncodeParams{
		SampleRate:  opts.SampleRate,
		Channels:    opts.Channels,
		BitDepth:    opts.SampleWidth * 8,
		BitrateKbps: t.bitrateFor(opts),
		Tags:        opts.Tags,
	}

	if err := enc.EncodeTrack(f, synced.Samples, p); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode track: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	return nil
}
