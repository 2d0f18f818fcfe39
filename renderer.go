// SPDX-License-Identifier: EPL-2.0

package nbswave

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nbstools/nbswave/audio"
	"github.com/nbstools/nbswave/nbs"
	"github.com/nbstools/nbswave/sounds"
)

// MixOptions configures a single mix pass.
type MixOptions struct {
	SampleRate  int
	Channels    int
	SampleWidth int // bytes per sample
	// IgnoreMissingInstruments drops notes whose instrument has no
	// resolvable sample instead of failing the render.
	IgnoreMissingInstruments bool
	// ExcludeLockedLayers leaves out notes on locked layers.
	ExcludeLockedLayers bool
	// Concurrency bounds the resampling worker pool.
	Concurrency int
}

func (o MixOptions) withDefaults() MixOptions {
	if o.SampleRate == 0 {
		o.SampleRate = 44100
	}
	if o.Channels == 0 {
		o.Channels = 2
	}
	if o.SampleWidth == 0 {
		o.SampleWidth = 2
	}
	if o.Concurrency == 0 {
		o.Concurrency = 8
	}
	return o
}

// SongRenderer mixes a song's notes into audio tracks. It owns the
// instrument sample table for the duration of the render.
type SongRenderer struct {
	song        *nbs.Song
	registry    *audio.Registry
	instruments map[int]*audio.Sound
	logger      *slog.Logger
}

// NewSongRenderer prepares a renderer for song, loading the built-in
// instrument samples from defaultSoundPath.
func NewSongRenderer(song *nbs.Song, defaultSoundPath string) (*SongRenderer, error) {
	registry := sounds.DefaultRegistry()
	instruments, err := sounds.LoadDefault(registry, defaultSoundPath)
	if err != nil {
		return nil, err
	}

	return &SongRenderer{
		song:        song,
		registry:    registry,
		instruments: instruments,
		logger:      slog.Default(),
	}, nil
}

// LoadInstruments loads the song's custom instrument samples from path (a
// directory or a .zip archive) into the renderer's sample table.
func (r *SongRenderer) LoadInstruments(path string) error {
	custom, err := sounds.LoadCustom(r.registry, r.song, path)
	if err != nil {
		return err
	}
	for id, sound := range custom {
		r.instruments[id] = sound
	}
	return nil
}

// MissingInstruments returns the custom instruments that have no loaded
// sample.
func (r *SongRenderer) MissingInstruments() []nbs.Instrument {
	var missing []nbs.Instrument
	for _, ins := range r.song.Instruments {
		id := ins.ID + r.song.Header.DefaultInstruments
		if _, ok := r.instruments[id]; !ok {
			missing = append(missing, ins)
		}
	}
	return missing
}

// MixSong renders the whole song into a single track.
func (r *SongRenderer) MixSong(opts MixOptions) (*audio.Track, error) {
	opts = opts.withDefaults()
	var notes []nbs.WeightedNote
	if opts.ExcludeLockedLayers {
		notes = r.song.UnlockedNotes()
	} else {
		notes = r.song.WeightedNotes()
	}
	return r.Mix(notes, opts)
}

// MixLayers renders each layer (or each group of equally named layers)
// into its own track.
func (r *SongRenderer) MixLayers(opts MixOptions, groupByName bool) (map[string]*audio.Track, error) {
	opts = opts.withDefaults()
	tracks := make(map[string]*audio.Track)
	for name, notes := range r.song.NotesByLayer(groupByName) {
		track, err := r.Mix(notes, opts)
		if err != nil {
			return nil, fmt.Errorf("mix layer %q: %w", name, err)
		}
		tracks[name] = track
	}
	return tracks, nil
}

// placement positions one occurrence of a pitched sample in the mix.
type placement struct {
	positionMs float64
	volume     float64
	panning    float64
}

// overlayTask groups every placement sharing one (instrument, pitch)
// pair, so the expensive pitch shift runs once per group.
type overlayTask struct {
	instrument int
	pitch      float64
	placements []placement
}

type renderedTask struct {
	task  *overlayTask
	sound *audio.Sound
}

// Mix renders the given weighted notes into a track: notes are grouped
// into overlay tasks, pitch-shifted in parallel on a bounded worker pool,
// and drained into the mixer by this goroutine.
func (r *SongRenderer) Mix(notes []nbs.WeightedNote, opts MixOptions) (*audio.Track, error) {
	opts = opts.withDefaults()

	segments, err := r.song.TempoSegments()
	if err != nil {
		return nil, err
	}

	tasks := r.buildOverlayTasks(notes, segments)

	// Resolve and sync each task's source sample up front so missing
	// instruments fail before any resampling work is spent.
	sources := make(map[int]*audio.Sound)
	scheduled := tasks[:0]
	skippedNotes := 0
	for _, task := range tasks {
		source, ok := sources[task.instrument]
		if !ok {
			raw, err := r.resolveInstrument(task.instrument, opts)
			if err != nil {
				return nil, err
			}
			if raw != nil {
				source, err = raw.Sync(opts.SampleRate, opts.Channels)
				if err != nil {
					return nil, fmt.Errorf("sync instrument %d: %w", task.instrument, err)
				}
			}
			sources[task.instrument] = source
		}
		if source == nil {
			skippedNotes += len(task.placements)
			continue
		}
		scheduled = append(scheduled, task)
	}
	if skippedNotes > 0 {
		r.logger.Info("skipped notes with unavailable instruments",
			"notes", skippedNotes)
	}

	mixer := audio.NewMixer(opts.SampleRate, opts.Channels, opts.SampleWidth)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(opts.Concurrency)

	results := make(chan renderedTask)
	done := make(chan error, 1)

	go func() {
		for _, task := range scheduled {
			task := task
			source := sources[task.instrument]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				shifted, err := source.ChangeSpeed(audio.KeyToSpeed(task.pitch))
				if err != nil {
					return fmt.Errorf("pitch shift instrument %d by %.2f: %w",
						task.instrument, task.pitch, err)
				}
				select {
				case results <- renderedTask{task: task, sound: shifted}:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
		}
		done <- g.Wait()
		close(results)
	}()

	// Single-threaded fan-in: the mixer buffer has exactly one writer, so
	// no locking is needed. Overlay order across groups is irrelevant
	// (addition commutes); completion order is fine.
	var overlayErr error
	for rt := range results {
		if overlayErr != nil {
			continue // drain remaining results
		}
		overlayErr = r.overlayGroup(mixer, rt)
	}
	if err := <-done; err != nil {
		return nil, err
	}
	if overlayErr != nil {
		return nil, overlayErr
	}

	return mixer.Finalize(), nil
}

// overlayGroup walks one task's placements, recomputing the gain/pan
// adjusted buffer only when volume or panning changes from the previous
// placement. The fold carries (prevVolume, prevPanning) explicitly, so
// correctness does not depend on iteration order; ordering placements by
// (volume, panning) just maximizes reuse.
func (r *SongRenderer) overlayGroup(mixer *audio.Mixer, rt renderedTask) error {
	prevVolume := math.NaN()
	prevPanning := math.NaN()
	var gained, adjusted *audio.Sound

	for _, p := range rt.task.placements {
		if p.volume != prevVolume {
			gained = rt.sound.Gain(p.volume)
			prevPanning = math.NaN()
		}
		if p.panning != prevPanning {
			adjusted = gained.Pan(p.panning)
		}
		prevVolume = p.volume
		prevPanning = p.panning

		if err := mixer.Overlay(adjusted, p.positionMs); err != nil {
			return fmt.Errorf("overlay at %.1fms: %w", p.positionMs, err)
		}
	}
	return nil
}

// pitchKey groups notes resampled together. Pitch equality is bit-exact
// by design: only genuinely identical pitches may share a resample.
type pitchKey struct {
	instrument int
	pitch      float64
}

// buildOverlayTasks groups the notes by (instrument, pitch) and orders
// each group's placements by (volume, panning) for the gain/pan cache.
// Tempo-control notes produce no sound and are excluded here.
func (r *SongRenderer) buildOverlayTasks(notes []nbs.WeightedNote, segments []float64) []*overlayTask {
	changerIDs := r.song.TempoChangerIDs()

	groups := make(map[pitchKey]*overlayTask)
	var order []pitchKey

	for _, note := range notes {
		if containsID(changerIDs, note.Instrument) {
			continue
		}

		pos := 0.0
		if note.Tick < len(segments) {
			pos = segments[note.Tick]
		} else if len(segments) > 0 {
			// Note past the declared song end: place it at the final
			// tempo's rate
			last := len(segments) - 1
			var delta float64
			if last > 0 {
				delta = segments[last] - segments[last-1]
			}
			pos = segments[last] + float64(note.Tick-last)*delta
		}

		key := pitchKey{instrument: note.Instrument, pitch: note.Pitch}
		task, ok := groups[key]
		if !ok {
			task = &overlayTask{instrument: note.Instrument, pitch: note.Pitch}
			groups[key] = task
			order = append(order, key)
		}
		task.placements = append(task.placements, placement{
			positionMs: pos,
			volume:     note.Volume,
			panning:    note.Panning,
		})
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].instrument != order[j].instrument {
			return order[i].instrument < order[j].instrument
		}
		return order[i].pitch < order[j].pitch
	})

	tasks := make([]*overlayTask, 0, len(order))
	for _, key := range order {
		task := groups[key]
		sort.SliceStable(task.placements, func(i, j int) bool {
			if task.placements[i].volume != task.placements[j].volume {
				return task.placements[i].volume < task.placements[j].volume
			}
			return task.placements[i].panning < task.placements[j].panning
		})
		tasks = append(tasks, task)
	}
	return tasks
}

// resolveInstrument looks up an instrument's sample. A nil sound with nil
// error means the instrument's notes should be skipped.
func (r *SongRenderer) resolveInstrument(id int, opts MixOptions) (*audio.Sound, error) {
	sound, ok := r.instruments[id]
	if !ok {
		if opts.IgnoreMissingInstruments {
			r.logger.Warn("instrument sample missing; dropping its notes",
				"instrument", id)
			return nil, nil
		}
		return nil, r.missingInstrumentError(id)
	}
	if sound == nil {
		// Declared but never assigned a sample file: always a skip
		r.logger.Warn("instrument has no assigned sample; dropping its notes",
			"instrument", id)
		return nil, nil
	}
	return sound, nil
}

func (r *SongRenderer) missingInstrumentError(id int) error {
	if custom := r.song.CustomInstrument(id); custom != nil {
		return &MissingInstrumentError{ID: id, Name: custom.Name, File: custom.File}
	}

	name := fmt.Sprintf("built-in %d", id)
	file := ""
	if id >= 0 && id < len(sounds.DefaultInstruments) {
		file = sounds.DefaultInstruments[id]
	}
	return &MissingInstrumentError{ID: id, Name: name, File: file}
}

func containsID(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
