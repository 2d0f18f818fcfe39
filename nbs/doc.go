// SPDX-License-Identifier: EPL-2.0

// Package nbs parses Note Block Studio (.nbs) files and models the parsed
// score: header, layers, custom instruments and note events.
//
// The Song type owns the parsed data for the song's lifetime and exposes
// read-only queries over it: length (with the version 1/2 length
// workaround), vertical slicing, layer grouping, lock filtering and the
// weighted-note derivation that folds layer volume/panning and instrument
// base pitch into each note.
//
// Tempo handling deserves a note: NBS has a hidden convention where an
// instrument named "Tempo Changer" carries no sound; each of its notes
// sets a new tempo from its tick onward, encoded in the note's pitch field
// as ticks-per-second x 15. TempoSegments resolves this into a per-tick
// millisecond table so note placement never needs to re-derive timing.
package nbs
