// SPDX-License-Identifier: EPL-2.0

package nbswave

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nbstools/nbswave/audio"
	"github.com/nbstools/nbswave/formats/wav"
	"github.com/nbstools/nbswave/nbs"
)

// RenderOptions configures RenderAudio. Zero values fall back to
// 44.1 kHz stereo 16-bit output at 320 kbps with 8 resampling workers.
type RenderOptions struct {
	// DefaultSoundPath is the directory holding the built-in instrument
	// samples. Defaults to "sounds".
	DefaultSoundPath string
	// CustomSoundPath is the directory or .zip archive holding the
	// song's custom instrument samples. Defaults to DefaultSoundPath.
	CustomSoundPath string

	SampleRate int
	Channels   int
	BitDepth   int // bits per sample

	TargetBitrate int // kbps
	TargetSize    int // kB; 0 means no size target

	IgnoreMissingInstruments bool
	ExcludeLockedLayers      bool

	Concurrency int
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.DefaultSoundPath == "" {
		o.DefaultSoundPath = "sounds"
	}
	if o.CustomSoundPath == "" {
		o.CustomSoundPath = o.DefaultSoundPath
	}
	if o.SampleRate == 0 {
		o.SampleRate = 44100
	}
	if o.Channels == 0 {
		o.Channels = 2
	}
	if o.BitDepth == 0 {
		o.BitDepth = 16
	}
	if o.TargetBitrate == 0 {
		o.TargetBitrate = 320
	}
	if o.Concurrency == 0 {
		o.Concurrency = 8
	}
	return o
}

// RenderAudio renders the NBS song at songPath into an audio file at
// outputPath. The call is synchronous: it returns once the file is fully
// written, or with an error and no output file at all.
func RenderAudio(songPath, outputPath string, opts RenderOptions) error {
	opts = opts.withDefaults()
	start := time.Now()

	song, err := nbs.ReadFile(songPath)
	if err != nil {
		return err
	}

	renderer, err := NewSongRenderer(song, opts.DefaultSoundPath)
	if err != nil {
		return err
	}
	if err := renderer.LoadInstruments(opts.CustomSoundPath); err != nil {
		return err
	}

	track, err := renderer.MixSong(MixOptions{
		SampleRate:               opts.SampleRate,
		Channels:                 opts.Channels,
		SampleWidth:              opts.BitDepth / 8,
		IgnoreMissingInstruments: opts.IgnoreMissingInstruments,
		ExcludeLockedLayers:      opts.ExcludeLockedLayers,
		Concurrency:              opts.Concurrency,
	})
	if err != nil {
		return fmt.Errorf("mix %s: %w", songPath, err)
	}

	err = track.Save(outputPath, audio.SaveOptions{
		SampleRate:    opts.SampleRate,
		Channels:      opts.Channels,
		SampleWidth:   opts.BitDepth / 8,
		TargetBitrate: opts.TargetBitrate,
		TargetSize:    opts.TargetSize,
	}, wav.Encoder{})
	if err != nil {
		return err
	}

	slog.Info("render finished",
		"song", songPath,
		"output", outputPath,
		"duration", track.DurationSeconds(),
		"elapsed", time.Since(start))

	return nil
}
