// SPDX-License-Identifier: EPL-2.0

package nbs

// Header holds the song-level fields of an NBS file.
type Header struct {
	// Version of the NBS format (0 for the classic pre-OpenNBS layout).
	Version int
	// DefaultInstruments is the number of built-in instruments when the
	// song was saved; custom instrument ids start after it.
	DefaultInstruments int
	// SongLength in ticks. Unreliable in version 1 and 2 files; use
	// Song.Len instead of reading this directly.
	SongLength int
	LayerCount int

	Name           string
	Author         string
	OriginalAuthor string
	Description    string

	// Tempo in ticks per second.
	Tempo float64

	AutoSave         bool
	AutoSaveDuration int
	TimeSignature    int

	MinutesSpent  int
	LeftClicks    int
	RightClicks   int
	BlocksAdded   int
	BlocksRemoved int
	ImportName    string

	LoopEnabled   bool
	MaxLoopCount  int
	LoopStartTick int
}

// Note is a single note block event. Notes are immutable once read;
// derived notes are new values.
type Note struct {
	Tick       int
	Layer      int
	Instrument int
	// Key in semitones, instrument-relative (45 = F#4 for built-ins).
	Key int
	// Velocity in [0, 100].
	Velocity int
	// Panning in [-100, 100], 0 centered.
	Panning int
	// Pitch is the fine detune in hundredths of a semitone.
	Pitch int
}

// Layer is a named track-like grouping of notes. Names are not unique.
type Layer struct {
	ID   int
	Name string
	Lock bool
	// Volume in [0, 100].
	Volume int
	// Panning in [-100, 100], 0 centered.
	Panning int
}

// Instrument is a custom (non-built-in) instrument declaration.
type Instrument struct {
	ID   int
	Name string
	// File is the sample file reference; empty means unassigned.
	File string
	// Pitch is the base key of the sample; 45 means no shift.
	Pitch    int
	PressKey bool
}

// WeightedNote is a note with its layer and instrument weighting applied:
// effective pitch in fractional semitones, volume in [0, 1] and panning in
// [-1, 1] (not clamped; consumers must tolerate slight overshoot).
type WeightedNote struct {
	Tick       int
	Instrument int
	Pitch      float64
	Volume     float64
	Panning    float64
}

// Weight derives the effective pitch, volume and panning of the note given
// its layer and, for custom instruments, the instrument declaration
// (custom may be nil). Pure; no side effects.
func (n Note) Weight(layer Layer, custom *Instrument) WeightedNote {
	// Built-in instruments are all pitched F#4 (key 45); a custom
	// instrument's own pitch field shifts its zero point symmetrically
	// around that.
	instrumentKey := 45.0
	if custom != nil {
		instrumentKey = float64(90 - custom.Pitch)
	}
	pitch := float64(n.Key) - instrumentKey + float64(n.Pitch)/100

	volume := float64(layer.Volume) / 100 * float64(n.Velocity) / 100

	notePan := float64(n.Panning) / 100
	panning := notePan
	if layer.Panning != 0 {
		panning = (float64(layer.Panning)/100 + notePan) / 2
	}

	return WeightedNote{
		Tick:       n.Tick,
		Instrument: n.Instrument,
		Pitch:      pitch,
		Volume:     volume,
		Panning:    panning,
	}
}

// Move returns the note shifted by offset ticks.
func (n Note) Move(offset int) Note {
	n.Tick += offset
	return n
}
