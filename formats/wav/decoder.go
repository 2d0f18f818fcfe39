package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nbstools/nbswave/audio"
)

type wavSource struct {
	r             io.Reader
	sampleRate    int
	channels      int
	bitsPerSample int
	remaining     int // bytes left in the data chunk
	buf           []byte
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if s.remaining <= 0 {
		return 0, io.EOF
	}

	width := s.bitsPerSample / 8
	want := len(dst) * width
	if want > s.remaining {
		want = s.remaining
	}
	if len(s.buf) < want {
		s.buf = make([]byte, want)
	}

	n, err := io.ReadFull(s.r, s.buf[:want])
	s.remaining -= n
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("%w", err)
	}

	samples := n / width
	for i := 0; i < samples; i++ {
		b := s.buf[i*width : (i+1)*width]
		switch s.bitsPerSample {
		case 8:
			// 8-bit WAV is unsigned
			dst[i] = (float32(b[0]) - 128) / 128.0
		case 16:
			v := int16(binary.LittleEndian.Uint16(b))
			dst[i] = float32(v) / 32768.0
		case 24:
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xffffff) // sign extend
			}
			dst[i] = float32(v) / 8388608.0
		case 32:
			v := int32(binary.LittleEndian.Uint32(b))
			dst[i] = float32(float64(v) / 2147483648.0)
		}
	}

	if samples == 0 {
		return 0, io.EOF
	}
	return samples, nil
}

type Decoder struct{}

// Decode parses a RIFF/WAVE stream, scanning chunks until the data chunk.
// Only integer PCM at 8, 16, 24 or 32 bits per sample is supported.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if !bytes.Equal(header[:4], []byte("RIFF")) || !bytes.Equal(header[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	var (
		haveFmt       bool
		channels      int
		sampleRate    int
		bitsPerSample int
	)

	chunkHeader := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, chunkHeader); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, ErrUnsupportedWavLayout
			}
			return nil, fmt.Errorf("%w", err)
		}
		chunkID := string(chunkHeader[:4])
		chunkSize := int(binary.LittleEndian.Uint32(chunkHeader[4:8]))

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, ErrUnsupportedWavLayout
			}
			fmtChunk := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, fmtChunk); err != nil {
				return nil, fmt.Errorf("%w", err)
			}

			audioFormat := binary.LittleEndian.Uint16(fmtChunk[0:2])
			channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))

			if audioFormat != 1 {
				return nil, ErrOnlyPCMSupported
			}
			switch bitsPerSample {
			case 8, 16, 24, 32:
			default:
				return nil, ErrOnlyPCMSupported
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, ErrUnsupportedWavLayout
			}
			return &wavSource{
				r:             r,
				sampleRate:    sampleRate,
				channels:      channels,
				bitsPerSample: bitsPerSample,
				remaining:     chunkSize,
				buf:           make([]byte, 4096),
			}, nil

		default:
			// Skip unknown chunks (LIST, fact, cue, ...); chunk data is
			// word-aligned
			skip := chunkSize
			if skip%2 != 0 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, int64(skip)); err != nil {
				return nil, ErrUnsupportedWavChunks
			}
		}
	}
}
