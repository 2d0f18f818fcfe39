package audio

import "fmt"

// ChannelMixer converts the channel count of a Source. Multi-channel input
// is down-mixed by averaging; mono input is duplicated across the target
// channels. Arbitrary N-to-M conversion goes through a mono intermediate.
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelMixer(src Source, channels int) (*ChannelMixer, error) {
	if channels < 1 {
		return nil, ErrInvalidChannels
	}
	return &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}, nil
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }

func (m *ChannelMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if m.src.Channels() == m.channels {
		// Pass-through
		return m.src.ReadSamples(dst)
	}

	srcChannels := m.src.Channels()
	maxFrames := len(dst) / m.channels
	if maxFrames == 0 {
		return 0, ErrInvalidDstSize
	}
	samplesNeeded := maxFrames * srcChannels

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(m.tmp) < samplesNeeded {
		newCap := samplesNeeded
		if newCap < 8192 {
			newCap = 8192
		}
		m.tmp = make([]float32, newCap)
	}
	m.tmp = m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(m.tmp[:samplesNeeded])
	if n == 0 {
		return 0, err
	}
	frames := n / srcChannels

	if srcChannels == 1 {
		// Up-mix: duplicate the mono sample into every output channel
		for f := 0; f < frames; f++ {
			v := m.tmp[f]
			base := f * m.channels
			for c := 0; c < m.channels; c++ {
				dst[base+c] = v
			}
		}
		return frames * m.channels, err
	}

	// Down-mix to mono, then spread across the output channels
	invChannels := float32(1.0) / float32(srcChannels)

	for f := 0; f < frames; f++ {
		var sum float32
		switch srcChannels {
		case 2: // Stereo (most common)
			idx := f << 1
			sum = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		default:
			base := f * srcChannels
			for c := 0; c < srcChannels; c++ {
				sum += m.tmp[base+c]
			}
			sum *= invChannels
		}

		base := f * m.channels
		for c := 0; c < m.channels; c++ {
			dst[base+c] = sum
		}
	}

	return frames * m.channels, err
}
