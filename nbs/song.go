// SPDX-License-Identifier: EPL-2.0

package nbs

import (
	"fmt"
	"sort"
)

// tempoChangerName marks an instrument slot repurposed as a tempo-control
// channel. Notes on such instruments produce no sound; their pitch field
// encodes the new tempo from their tick onward.
const tempoChangerName = "Tempo Changer"

// Song is a typed, read-only view over a parsed NBS file. All query
// methods are non-mutating; derived notes are new values.
type Song struct {
	Header      Header
	Notes       []Note
	Layers      []Layer
	Instruments []Instrument
}

// Len returns the length of the song in ticks. Version 1 and 2 files
// carry no reliable length field, so the maximum note tick is used
// instead.
func (s *Song) Len() int {
	if s.Header.Version == 1 || s.Header.Version == 2 {
		length := 0
		for _, n := range s.Notes {
			if n.Tick > length {
				length = n.Tick
			}
		}
		return length
	}
	return s.Header.SongLength
}

// Duration returns the duration of the song in milliseconds, accounting
// for tempo changes.
func (s *Song) Duration() (float64, error) {
	segments, err := s.TempoSegments()
	if err != nil {
		return 0, err
	}
	return segments[len(segments)-1], nil
}

// NotesAt returns the notes in the vertical slice at the given tick.
func (s *Song) NotesAt(tick int) []Note {
	var section []Note
	for _, n := range s.Notes {
		if n.Tick == tick {
			section = append(section, n)
		}
	}
	return section
}

// NotesBetween returns the notes with start < tick < stop.
func (s *Song) NotesBetween(start, stop int) []Note {
	var section []Note
	for _, n := range s.Notes {
		if n.Tick > start && n.Tick < stop {
			section = append(section, n)
		}
	}
	return section
}

// layerAt resolves a note's layer id. Notes referencing a layer the file
// never declared get a default layer (full volume, centered, unlocked).
func (s *Song) layerAt(id int) Layer {
	if id < 0 || id >= len(s.Layers) {
		return Layer{ID: id, Volume: 100}
	}
	return s.Layers[id]
}

// CustomInstrument resolves a note's instrument id to its custom
// instrument declaration, or nil for built-in instruments.
func (s *Song) CustomInstrument(id int) *Instrument {
	idx := id - s.Header.DefaultInstruments
	if idx < 0 || idx >= len(s.Instruments) {
		return nil
	}
	return &s.Instruments[idx]
}

// TempoChangerIDs returns the instrument ids acting as tempo changers.
// This is a hidden NBS feature keyed by instrument name.
func (s *Song) TempoChangerIDs() []int {
	var ids []int
	for _, ins := range s.Instruments {
		if ins.Name == tempoChangerName {
			ids = append(ids, ins.ID+s.Header.DefaultInstruments)
		}
	}
	return ids
}

// HasTempoChangers reports whether any note plays on a tempo-changer
// instrument.
func (s *Song) HasTempoChangers() bool {
	ids := s.TempoChangerIDs()
	if len(ids) == 0 {
		return false
	}
	for _, n := range s.Notes {
		if containsInt(ids, n.Instrument) {
			return true
		}
	}
	return false
}

// IsTempoChanger reports whether the note is a tempo-control event rather
// than an audible note.
func (s *Song) IsTempoChanger(n Note) bool {
	return containsInt(s.TempoChangerIDs(), n.Instrument)
}

// TempoSegments computes, for every tick boundary from 0 through Len(),
// the millisecond offset at which that tick begins playing. The table is
// built once per render and consumed read-only.
//
// When several tempo changers share a tick, only the first in stable
// (tick, original index) order takes effect. A change implying a
// non-positive tempo fails with MalformedTempoError.
func (s *Song) TempoSegments() ([]float64, error) {
	length := s.Len()
	segments := make([]float64, 0, length+2)

	changerIDs := s.TempoChangerIDs()
	var changers []Note
	for _, n := range s.Notes {
		if containsInt(changerIDs, n.Instrument) {
			changers = append(changers, n)
		}
	}
	sort.SliceStable(changers, func(i, j int) bool {
		return changers[i].Tick < changers[j].Tick
	})

	currentTick := 0
	currentTempo := s.Header.Tempo
	if currentTempo <= 0 {
		return nil, &MalformedTempoError{Tick: 0, Tempo: currentTempo}
	}
	millis := 0.0
	prevChangeTick := -1

	for _, change := range changers {
		if change.Tick == prevChangeTick {
			// Duplicate changers in one tick: first wins
			continue
		}
		prevChangeTick = change.Tick

		for tick := currentTick; tick < change.Tick; tick++ {
			segments = append(segments, millis)
			millis += 1000 / currentTempo
		}
		currentTick = change.Tick

		// The raw pitch field encodes ticks-per-second x 15
		newTempo := float64(change.Pitch) / 15
		if newTempo <= 0 {
			return nil, &MalformedTempoError{Tick: change.Tick, Tempo: newTempo}
		}
		currentTempo = newTempo
	}

	// Fill the remainder of the song after the last change
	for tick := currentTick; tick <= length; tick++ {
		segments = append(segments, millis)
		millis += 1000 / currentTempo
	}

	return segments, nil
}

// WeightedNotes applies layer and instrument weighting to every note.
func (s *Song) WeightedNotes() []WeightedNote {
	out := make([]WeightedNote, 0, len(s.Notes))
	for _, n := range s.Notes {
		out = append(out, n.Weight(s.layerAt(n.Layer), s.CustomInstrument(n.Instrument)))
	}
	return out
}

// LayerGroups returns, for each distinct layer name, the ids of all layers
// carrying that name.
func (s *Song) LayerGroups() map[string][]int {
	groups := make(map[string][]int)
	for _, layer := range s.Layers {
		groups[layer.Name] = append(groups[layer.Name], layer.ID)
	}
	return groups
}

// NotesByLayer groups the weighted notes of each non-empty layer. With
// groupByName, layers sharing a name are merged into one group; otherwise
// each layer keys its own "<id> <name>" group.
func (s *Song) NotesByLayer(groupByName bool) map[string][]WeightedNote {
	groups := make(map[string][]WeightedNote)
	for _, n := range s.Notes {
		layer := s.layerAt(n.Layer)
		key := layer.Name
		if !groupByName {
			key = fmt.Sprintf("%d %s", layer.ID, layer.Name)
		}
		weighted := n.Weight(layer, s.CustomInstrument(n.Instrument))
		groups[key] = append(groups[key], weighted)
	}
	return groups
}

// LockedLayers returns the ids of all locked layers.
func (s *Song) LockedLayers() []int {
	var ids []int
	for _, layer := range s.Layers {
		if layer.Lock {
			ids = append(ids, layer.ID)
		}
	}
	return ids
}

// UnlockedNotes returns the weighted notes of every note whose layer is
// not locked.
func (s *Song) UnlockedNotes() []WeightedNote {
	locked := s.LockedLayers()
	out := make([]WeightedNote, 0, len(s.Notes))
	for _, n := range s.Notes {
		if containsInt(locked, n.Layer) {
			continue
		}
		out = append(out, n.Weight(s.layerAt(n.Layer), s.CustomInstrument(n.Instrument)))
	}
	return out
}

// Loop returns a copy of the song played count times in total, repeating
// from the start tick (or the header's loop start tick when start < 0).
func (s *Song) Loop(count, start int) *Song {
	if start < 0 {
		start = s.Header.LoopStartTick
	}
	if count < 2 {
		return s
	}

	length := s.Len()
	span := length - start + 1
	if span <= 0 {
		return s
	}

	looped := &Song{
		Header:      s.Header,
		Notes:       append([]Note(nil), s.Notes...),
		Layers:      s.Layers,
		Instruments: s.Instruments,
	}

	for i := 1; i < count; i++ {
		offset := span * i
		for _, n := range s.Notes {
			if n.Tick < start {
				continue
			}
			looped.Notes = append(looped.Notes, n.Move(offset))
		}
	}

	looped.Header.SongLength = length + span*(count-1)
	return looped
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
