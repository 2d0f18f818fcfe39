// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"
)

// Sound is a fully decoded, in-memory audio buffer of interleaved float32
// samples in [-1, 1]. Sounds are value-like: transformations return new
// buffers and never mutate the receiver.
type Sound struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (s *Sound) Frames() int {
	if s.Channels == 0 {
		return 0
	}
	return len(s.Samples) / s.Channels
}

// DurationMs returns the duration of the sound in milliseconds.
func (s *Sound) DurationMs() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(s.Frames()) / float64(s.SampleRate) * 1000
}

// ReadAll drains src and collects every sample into a Sound.
func ReadAll(src Source) (*Sound, error) {
	samples := make([]float32, 0, 4096)
	buf := make([]float32, 4096)

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			samples = append(samples, buf[:n]...)
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read samples: %w", err)
		}
	}

	return &Sound{
		Samples:    samples,
		SampleRate: src.SampleRate(),
		Channels:   src.Channels(),
	}, nil
}

// soundSource adapts an in-memory Sound to the streaming Source interface.
// The reported sample rate can differ from the sound's own rate; the
// speed-change transform relies on this to reinterpret playback speed.
type soundSource struct {
	sound *Sound
	rate  int
	off   int
}

func newSoundSource(s *Sound, rate int) *soundSource {
	return &soundSource{sound: s, rate: rate}
}

func (s *soundSource) SampleRate() int { return s.rate }
func (s *soundSource) Channels() int   { return s.sound.Channels }
func (s *soundSource) Close() error    { return nil }

func (s *soundSource) ReadSamples(dst []float32) (int, error) {
	if s.off >= len(s.sound.Samples) {
		return 0, io.EOF
	}
	n := copy(dst, s.sound.Samples[s.off:])
	s.off += n
	if s.off >= len(s.sound.Samples) {
		return n, io.EOF
	}
	return n, nil
}

// Sync converts the sound to the given sample rate and channel count.
// Channel conversion happens before resampling so the resampler runs on
// the narrowest interleave.
func (s *Sound) Sync(sampleRate, channels int) (*Sound, error) {
	if s.SampleRate == sampleRate && s.Channels == channels {
		return s, nil
	}

	var src Source = newSoundSource(s, s.SampleRate)

	if s.Channels != channels {
		mixed, err := NewChannelMixer(src, channels)
		if err != nil {
			return nil, err
		}
		src = mixed
	}

	if s.SampleRate != sampleRate {
		src = NewResampler(src, sampleRate)
	}

	return ReadAll(src)
}

// ChangeSpeed plays the sound back at the given speed factor without pitch
// correction: the frame rate is reinterpreted as rate*speed, then the result
// is brought back to the original rate. speed > 1 raises pitch and shortens
// the sound.
func (s *Sound) ChangeSpeed(speed float64) (*Sound, error) {
	if speed == 1.0 {
		return s, nil
	}
	if speed <= 0 {
		return nil, ErrInvalidSpeed
	}

	shiftedRate := int(math.Round(float64(s.SampleRate) * speed))
	if shiftedRate < 1 {
		shiftedRate = 1
	}

	src := newSoundSource(s, shiftedRate)
	return ReadAll(NewResampler(src, s.SampleRate))
}

// Gain returns a copy of the sound with every sample scaled by factor.
func (s *Sound) Gain(factor float64) *Sound {
	out := make([]float32, len(s.Samples))
	f := float32(factor)
	for i, v := range s.Samples {
		out[i] = v * f
	}
	return &Sound{Samples: out, SampleRate: s.SampleRate, Channels: s.Channels}
}

// Pan positions a stereo sound in the field pan ∈ [-1, 1] using a
// constant-power law normalized to unity at center: -1 routes full energy
// left, +1 full energy right, 0 leaves the sound untouched. Values beyond
// the range are clamped. Non-stereo sounds are returned unchanged.
func (s *Sound) Pan(pan float64) *Sound {
	if s.Channels != 2 || pan == 0 {
		return s
	}
	if pan < -1 {
		pan = -1
	} else if pan > 1 {
		pan = 1
	}

	theta := (pan + 1) * math.Pi / 4
	gainL := float32(math.Sqrt2 * math.Cos(theta))
	gainR := float32(math.Sqrt2 * math.Sin(theta))

	out := make([]float32, len(s.Samples))
	for i := 0; i+1 < len(s.Samples); i += 2 {
		out[i] = s.Samples[i] * gainL
		out[i+1] = s.Samples[i+1] * gainR
	}
	return &Sound{Samples: out, SampleRate: s.SampleRate, Channels: s.Channels}
}

// KeyToSpeed converts a relative pitch in semitones to a playback speed
// factor (an equal-tempered 2^(key/12)).
func KeyToSpeed(key float64) float64 {
	return math.Pow(2, key/12)
}
