// SPDX-License-Identifier: EPL-2.0

// Package nbswave renders Note Block Studio songs into audio files.
//
// A render takes a parsed .nbs score, derives each note's effective pitch,
// volume and panning from its layer and instrument, resolves note ticks to
// millisecond positions through the song's tempo timeline, pitch-shifts
// the instrument samples (once per distinct instrument/pitch pair, in
// parallel) and additively mixes every note into one normalized buffer.
//
// # Quick Start
//
//	err := nbswave.RenderAudio("song.nbs", "song.wav", nbswave.RenderOptions{
//	    DefaultSoundPath: "sounds",
//	})
//
// # Pipeline
//
// For more control, drive the renderer directly:
//
//	song, _ := nbs.ReadFile("song.nbs")
//	renderer, _ := nbswave.NewSongRenderer(song, "sounds")
//	renderer.LoadInstruments("custom_sounds.zip")
//	track, _ := renderer.MixSong(nbswave.MixOptions{})
//	track.Save("song.wav", audio.SaveOptions{}, wav.Encoder{})
//
// MixLayers renders each layer (or each group of equally named layers)
// into its own track instead.
//
// # Concurrency
//
// The CPU-heavy pitch-shift resampling runs on a bounded worker pool;
// everything else, including every write to the output buffer, happens on
// the calling goroutine. The render is a single blocking operation.
//
// # Failure Behavior
//
// Per-note and per-instrument problems are recoverable only when
// explicitly allowed: unassigned instrument samples are always skipped
// (and logged), missing instruments are fatal unless
// IgnoreMissingInstruments is set. Every other failure aborts the render;
// a failed render writes no output file.
package nbswave
