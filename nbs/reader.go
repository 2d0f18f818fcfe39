// SPDX-License-Identifier: EPL-2.0

package nbs

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Read parses a binary NBS stream into a Song. Both the classic layout
// (version 0) and the OpenNBS layouts (versions 1-5) are supported.
func Read(r io.Reader) (*Song, error) {
	br := &byteReader{r: bufio.NewReader(r)}

	header, err := readHeader(br)
	if err != nil {
		return nil, fmt.Errorf("nbs header: %w", err)
	}

	notes, err := readNotes(br, header)
	if err != nil {
		return nil, fmt.Errorf("nbs notes: %w", err)
	}

	// Layer and instrument sections are optional in practice; a stream
	// that ends after the note section gets default layers.
	layers, err := readLayers(br, header)
	if err == io.EOF {
		layers = defaultLayers(header.LayerCount)
	} else if err != nil {
		return nil, fmt.Errorf("nbs layers: %w", err)
	}

	instruments, err := readInstruments(br)
	if err == io.EOF {
		instruments = nil
	} else if err != nil {
		return nil, fmt.Errorf("nbs instruments: %w", err)
	}

	return &Song{
		Header:      *header,
		Notes:       notes,
		Layers:      layers,
		Instruments: instruments,
	}, nil
}

// ReadFile parses the NBS file at path.
func ReadFile(path string) (*Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open song: %w", err)
	}
	defer f.Close()

	song, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return song, nil
}

func readHeader(br *byteReader) (*Header, error) {
	h := &Header{}

	first, err := br.readShort()
	if err != nil {
		return nil, err
	}

	if first == 0 {
		// OpenNBS layout: the zero length marks the new format
		version, err := br.readUint8()
		if err != nil {
			return nil, err
		}
		h.Version = version
		if version < 1 || version > 5 {
			return nil, &UnsupportedVersionError{Version: version}
		}

		if h.DefaultInstruments, err = br.readUint8(); err != nil {
			return nil, err
		}
		if version >= 3 {
			if h.SongLength, err = br.readShort(); err != nil {
				return nil, err
			}
		}
	} else {
		// Classic layout: the first short is the song length
		h.Version = 0
		h.SongLength = first
		h.DefaultInstruments = 10
	}

	if h.LayerCount, err = br.readShort(); err != nil {
		return nil, err
	}
	if h.Name, err = br.readString(); err != nil {
		return nil, err
	}
	if h.Author, err = br.readString(); err != nil {
		return nil, err
	}
	if h.OriginalAuthor, err = br.readString(); err != nil {
		return nil, err
	}
	if h.Description, err = br.readString(); err != nil {
		return nil, err
	}

	tempo, err := br.readShort()
	if err != nil {
		return nil, err
	}
	h.Tempo = float64(tempo) / 100

	autoSave, err := br.readUint8()
	if err != nil {
		return nil, err
	}
	h.AutoSave = autoSave != 0
	if h.AutoSaveDuration, err = br.readUint8(); err != nil {
		return nil, err
	}
	if h.TimeSignature, err = br.readUint8(); err != nil {
		return nil, err
	}
	if h.MinutesSpent, err = br.readInt(); err != nil {
		return nil, err
	}
	if h.LeftClicks, err = br.readInt(); err != nil {
		return nil, err
	}
	if h.RightClicks, err = br.readInt(); err != nil {
		return nil, err
	}
	if h.BlocksAdded, err = br.readInt(); err != nil {
		return nil, err
	}
	if h.BlocksRemoved, err = br.readInt(); err != nil {
		return nil, err
	}
	if h.ImportName, err = br.readString(); err != nil {
		return nil, err
	}

	if h.Version >= 4 {
		loop, err := br.readUint8()
		if err != nil {
			return nil, err
		}
		h.LoopEnabled = loop != 0
		if h.MaxLoopCount, err = br.readUint8(); err != nil {
			return nil, err
		}
		if h.LoopStartTick, err = br.readShort(); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// readNotes walks the run-length encoded note section: tick jumps on the
// outer loop, layer jumps on the inner one.
func readNotes(br *byteReader, h *Header) ([]Note, error) {
	var notes []Note
	tick := -1

	for {
		jumps, err := br.readShort()
		if err != nil {
			return nil, err
		}
		if jumps == 0 {
			break
		}
		tick += jumps
		layer := -1

		for {
			jumps, err := br.readShort()
			if err != nil {
				return nil, err
			}
			if jumps == 0 {
				break
			}
			layer += jumps

			note := Note{Tick: tick, Layer: layer, Velocity: 100}
			if note.Instrument, err = br.readUint8(); err != nil {
				return nil, err
			}
			if note.Key, err = br.readUint8(); err != nil {
				return nil, err
			}

			if h.Version >= 4 {
				if note.Velocity, err = br.readUint8(); err != nil {
					return nil, err
				}
				// Panning is stored shifted: 100 means centered
				pan, err := br.readUint8()
				if err != nil {
					return nil, err
				}
				note.Panning = pan - 100
				if note.Pitch, err = br.readShort(); err != nil {
					return nil, err
				}
			}

			notes = append(notes, note)
		}
	}

	return notes, nil
}

func readLayers(br *byteReader, h *Header) ([]Layer, error) {
	layers := make([]Layer, 0, h.LayerCount)

	for i := 0; i < h.LayerCount; i++ {
		layer := Layer{ID: i, Volume: 100}

		name, err := br.readString()
		if err != nil {
			if err == io.EOF && i == 0 {
				return nil, io.EOF
			}
			return nil, err
		}
		layer.Name = name

		if h.Version >= 4 {
			lock, err := br.readUint8()
			if err != nil {
				return nil, err
			}
			layer.Lock = lock != 0
		}

		if layer.Volume, err = br.readUint8(); err != nil {
			return nil, err
		}

		if h.Version >= 2 {
			pan, err := br.readUint8()
			if err != nil {
				return nil, err
			}
			layer.Panning = pan - 100
		}

		layers = append(layers, layer)
	}

	return layers, nil
}

func readInstruments(br *byteReader) ([]Instrument, error) {
	count, err := br.readUint8()
	if err != nil {
		return nil, err
	}

	instruments := make([]Instrument, 0, count)
	for i := 0; i < count; i++ {
		ins := Instrument{ID: i}
		if ins.Name, err = br.readString(); err != nil {
			return nil, err
		}
		if ins.File, err = br.readString(); err != nil {
			return nil, err
		}
		if ins.Pitch, err = br.readUint8(); err != nil {
			return nil, err
		}
		pressKey, err := br.readUint8()
		if err != nil {
			return nil, err
		}
		ins.PressKey = pressKey != 0
		instruments = append(instruments, ins)
	}

	return instruments, nil
}

func defaultLayers(count int) []Layer {
	layers := make([]Layer, count)
	for i := range layers {
		layers[i] = Layer{ID: i, Volume: 100}
	}
	return layers
}

// byteReader reads the little-endian primitives of the NBS format.
type byteReader struct {
	r *bufio.Reader
}

func (b *byteReader) readUint8() (int, error) {
	v, err := b.r.ReadByte()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (b *byteReader) readShort() (int, error) {
	var buf [2]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return 0, io.EOF
		}
		return 0, err
	}
	return int(int16(binary.LittleEndian.Uint16(buf[:]))), nil
}

func (b *byteReader) readInt() (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return 0, io.EOF
		}
		return 0, err
	}
	return int(int32(binary.LittleEndian.Uint32(buf[:]))), nil
}

func (b *byteReader) readString() (string, error) {
	length, err := b.readInt()
	if err != nil {
		return "", err
	}
	if length < 0 {
		return "", ErrCorruptString
	}
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return "", io.EOF
		}
		return "", err
	}
	return string(buf), nil
}
