// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/nbstools/nbswave/audio"
	"github.com/nbstools/nbswave/utils"
)

// Encoder writes rendered tracks as integer PCM WAV files. It implements
// audio.TrackEncoder; the bitrate and tag parameters do not apply to
// uncompressed PCM and are ignored.
type Encoder struct{}

var _ audio.TrackEncoder = Encoder{}

func (Encoder) EncodeTrack(w io.WriteSeeker, samples []float32, p audio.EncodeParams) error {
	return Encode(w, samples, p.SampleRate, p.Channels, p.BitDepth)
}

// Encode writes interleaved float32 samples as a PCM WAV file at the given
// bit depth (16, 24 or 32 bits).
func Encode(w io.WriteSeeker, samples []float32, sampleRate, channels, bitDepth int) error {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return ErrUnsupportedBitDepth
	}

	enc := gowav.NewEncoder(w, sampleRate, bitDepth, channels, 1)

	// Convert and write in chunks to bound the int conversion buffer
	const chunkSize = 8192
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: bitDepth,
		Data:           make([]int, 0, chunkSize),
	}

	for off := 0; off < len(samples); off += chunkSize {
		end := off + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		chunk := samples[off:end]

		buf.Data = buf.Data[:len(chunk)]
		for i, v := range chunk {
			buf.Data[i] = utils.Float32ToInt(v, bitDepth)
		}

		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("write wav chunk: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}

	return nil
}
