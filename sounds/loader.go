// SPDX-License-Identifier: EPL-2.0

// Package sounds loads instrument samples for rendering: the built-in
// note block sounds from a directory, and a song's custom instrument
// samples from a directory or a zip archive.
package sounds

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nbstools/nbswave/audio"
	"github.com/nbstools/nbswave/formats/aiff"
	"github.com/nbstools/nbswave/formats/mp3"
	"github.com/nbstools/nbswave/formats/vorbis"
	"github.com/nbstools/nbswave/formats/wav"
	"github.com/nbstools/nbswave/nbs"
)

// DefaultInstruments lists the sample files of the built-in instruments,
// indexed by instrument id.
var DefaultInstruments = []string{
	"harp.ogg",
	"dbass.ogg",
	"bdrum.ogg",
	"sdrum.ogg",
	"click.ogg",
	"guitar.ogg",
	"flute.ogg",
	"bell.ogg",
	"icechime.ogg",
	"xylobone.ogg",
	"iron_xylophone.ogg",
	"cow_bell.ogg",
	"didgeridoo.ogg",
	"bit.ogg",
	"banjo.ogg",
	"pling.ogg",
}

// DefaultRegistry returns a decoder registry covering every sample format
// the loader understands, keyed by file extension.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	return reg
}

// LoadSound decodes a single sample, choosing the decoder from the file
// name's extension.
func LoadSound(reg *audio.Registry, name string, r io.Reader) (*audio.Sound, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	dec, ok := reg.Get(ext)
	if !ok {
		return nil, &UnsupportedFormatError{File: name, Format: ext}
	}

	src, err := dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	defer src.Close()

	return audio.ReadAll(src)
}

// LoadSoundFile decodes the sample at path.
func LoadSoundFile(reg *audio.Registry, path string) (*audio.Sound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadSound(reg, path, f)
}

// LoadDefault loads the built-in instrument samples from dir. Samples
// missing from the directory are skipped with a log line; whether that is
// fatal depends on the notes of the rendered song, so the decision is left
// to the renderer.
func LoadDefault(reg *audio.Registry, dir string) (map[int]*audio.Sound, error) {
	sounds := make(map[int]*audio.Sound, len(DefaultInstruments))

	for id, name := range DefaultInstruments {
		sound, err := LoadSoundFile(reg, filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				slog.Warn("default instrument sample not found; skipping",
					"instrument", id, "file", name)
				continue
			}
			return nil, fmt.Errorf("load default instrument %s: %w", name, err)
		}
		sounds[id] = sound
	}

	return sounds, nil
}

// LoadCustom loads the custom instrument samples declared by song from
// path, which may be a directory or a .zip archive. The returned map is
// keyed by absolute instrument id (custom id + default instrument count).
// A nil map value records an instrument whose sample file was never
// assigned; instruments whose file cannot be found are skipped with a log
// line and left out of the map entirely.
func LoadCustom(reg *audio.Registry, song *nbs.Song, path string) (map[int]*audio.Sound, error) {
	sounds := make(map[int]*audio.Sound, len(song.Instruments))

	var open func(name string) (io.ReadCloser, error)
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		archive, err := zip.OpenReader(path)
		if err != nil {
			return nil, fmt.Errorf("open sound archive: %w", err)
		}
		defer archive.Close()
		open = func(name string) (io.ReadCloser, error) {
			return archive.Open(name)
		}
	} else {
		open = func(name string) (io.ReadCloser, error) {
			return os.Open(filepath.Join(path, name))
		}
	}

	for _, ins := range song.Instruments {
		id := ins.ID + song.Header.DefaultInstruments

		if ins.File == "" {
			slog.Warn("sound file for instrument not assigned; skipping",
				"instrument", ins.Name)
			sounds[id] = nil
			continue
		}

		f, err := open(ins.File)
		if err != nil {
			if os.IsNotExist(err) {
				slog.Warn("sound file for instrument not found; skipping",
					"instrument", ins.Name, "file", ins.File)
				continue
			}
			return nil, fmt.Errorf("open sample %s: %w", ins.File, err)
		}

		sound, err := LoadSound(reg, ins.File, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("load sample %s: %w", ins.File, err)
		}
		sounds[id] = sound
	}

	return sounds, nil
}
