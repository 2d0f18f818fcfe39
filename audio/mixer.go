// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"log/slog"
	"math"
)

// Mixer accumulates sounds into a single growable buffer by additive
// overlay. The buffer is owned exclusively by the mixer; callers feed it
// pre-synced sounds from one goroutine and finalize once all overlays are
// done.
type Mixer struct {
	output      []float32
	frameRate   int
	channels    int
	sampleWidth int // bytes per sample
	logger      *slog.Logger
}

func NewMixer(frameRate, channels, sampleWidth int) *Mixer {
	return &Mixer{
		output:      make([]float32, 0),
		frameRate:   frameRate,
		channels:    channels,
		sampleWidth: sampleWidth,
		logger:      slog.Default(),
	}
}

func (m *Mixer) FrameRate() int { return m.frameRate }
func (m *Mixer) Channels() int  { return m.channels }

// LengthMs returns the current buffer length in milliseconds.
func (m *Mixer) LengthMs() float64 {
	if m.frameRate == 0 || m.channels == 0 {
		return 0
	}
	frames := len(m.output) / m.channels
	return float64(frames) / float64(m.frameRate) * 1000
}

// alignedSize pads a sample count up to a whole frame.
func (m *Mixer) alignedSize(size int) int {
	align := m.channels
	return (size + align - 1) / align * align
}

// Overlay adds the sound's samples into the buffer starting at positionMs,
// growing the buffer with zero padding if the sound extends past its end.
// The sound must already match the mixer's frame rate and channel count.
func (m *Mixer) Overlay(sound *Sound, positionMs float64) error {
	if sound.SampleRate != m.frameRate || sound.Channels != m.channels {
		return ErrFormatMismatch
	}

	frameOffset := int(math.Round(float64(m.frameRate) * positionMs / 1000))
	start := frameOffset * m.channels
	end := start + len(sound.Samples)

	if end > len(m.output) {
		grown := make([]float32, m.alignedSize(end))
		copy(grown, m.output)
		m.logger.Debug("mixer buffer grown",
			"from", len(m.output), "to", len(grown))
		m.output = grown
	}

	for i, v := range sound.Samples {
		m.output[start+i] += v
	}

	return nil
}

// Append overlays the sound at the current end of the buffer.
func (m *Mixer) Append(sound *Sound) error {
	return m.Overlay(sound, m.LengthMs())
}

// Finalize normalizes the buffer and emits the finished track. If the peak
// magnitude exceeds full scale the whole buffer is scaled down to prevent
// clipping; in-range buffers are left untouched (no upward normalization).
func (m *Mixer) Finalize() *Track {
	var peak float32
	for _, v := range m.output {
		if a := float32(math.Abs(float64(v))); a > peak {
			peak = a
		}
	}

	samples := m.output
	if peak > 1 {
		m.logger.Info("output is clipping, normalizing to full scale",
			"factor", peak)
		normalized := make([]float32, len(samples))
		inv := 1 / peak
		for i, v := range samples {
			normalized[i] = v * inv
		}
		samples = normalized
	}

	return &Track{
		samples:     samples,
		frameRate:   m.frameRate,
		channels:    m.channels,
		sampleWidth: m.sampleWidth,
	}
}
