package audio

import (
	"math"
	"testing"
)

func constantSound(value float32, frames, sampleRate, channels int) *Sound {
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = value
	}
	return &Sound{Samples: samples, SampleRate: sampleRate, Channels: channels}
}

func TestMixer_OverlayFormatMismatch(t *testing.T) {
	t.Parallel()

	mixer := NewMixer(44100, 2, 2)

	wrongRate := constantSound(0.5, 10, 22050, 2)
	if err := mixer.Overlay(wrongRate, 0); err != ErrFormatMismatch {
		t.Errorf("Overlay() with wrong rate error = %v, want ErrFormatMismatch", err)
	}

	wrongChannels := constantSound(0.5, 10, 44100, 1)
	if err := mixer.Overlay(wrongChannels, 0); err != ErrFormatMismatch {
		t.Errorf("Overlay() with wrong channels error = %v, want ErrFormatMismatch", err)
	}
}

func TestMixer_OverlayNonOverlapping(t *testing.T) {
	t.Parallel()

	// Two sounds placed end to end equal their concatenation
	mixer := NewMixer(1000, 1, 2)

	first := constantSound(0.3, 10, 1000, 1)
	second := constantSound(0.6, 10, 1000, 1)

	if err := mixer.Overlay(first, 0); err != nil {
		t.Fatalf("Overlay(first) error = %v", err)
	}
	if err := mixer.Overlay(second, 10); err != nil {
		t.Fatalf("Overlay(second) error = %v", err)
	}

	track := mixer.Finalize()
	samples := track.Samples()
	if len(samples) != 20 {
		t.Fatalf("len(samples) = %d, want 20", len(samples))
	}
	for i := 0; i < 10; i++ {
		if samples[i] != 0.3 {
			t.Errorf("samples[%d] = %v, want 0.3", i, samples[i])
		}
	}
	for i := 10; i < 20; i++ {
		if samples[i] != 0.6 {
			t.Errorf("samples[%d] = %v, want 0.6", i, samples[i])
		}
	}
}

func TestMixer_OverlayAdditive(t *testing.T) {
	t.Parallel()

	// Two sounds at the same position sum sample-wise
	mixer := NewMixer(1000, 1, 2)

	a := constantSound(0.3, 10, 1000, 1)
	b := constantSound(0.4, 10, 1000, 1)

	if err := mixer.Overlay(a, 0); err != nil {
		t.Fatalf("Overlay(a) error = %v", err)
	}
	if err := mixer.Overlay(b, 0); err != nil {
		t.Fatalf("Overlay(b) error = %v", err)
	}

	samples := mixer.Finalize().Samples()
	for i, v := range samples {
		if math.Abs(float64(v-0.7)) > 1e-6 {
			t.Errorf("samples[%d] = %v, want 0.7", i, v)
		}
	}
}

func TestMixer_OverlayGrowsWithSilence(t *testing.T) {
	t.Parallel()

	// A sound placed past the current end zero-fills the gap
	mixer := NewMixer(1000, 1, 2)

	sound := constantSound(0.5, 5, 1000, 1)
	if err := mixer.Overlay(sound, 20); err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}

	samples := mixer.Finalize().Samples()
	if len(samples) != 25 {
		t.Fatalf("len(samples) = %d, want 25", len(samples))
	}
	for i := 0; i < 20; i++ {
		if samples[i] != 0 {
			t.Errorf("samples[%d] = %v, want 0 (gap)", i, samples[i])
		}
	}
	for i := 20; i < 25; i++ {
		if samples[i] != 0.5 {
			t.Errorf("samples[%d] = %v, want 0.5", i, samples[i])
		}
	}
}

func TestMixer_OverlayStereoPosition(t *testing.T) {
	t.Parallel()

	// Positions resolve to frame offsets, not raw sample offsets
	mixer := NewMixer(1000, 2, 2)

	sound := constantSound(0.5, 4, 1000, 2)
	if err := mixer.Overlay(sound, 3); err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}

	samples := mixer.Finalize().Samples()
	// 3ms at 1000 fps = 3 frames = 6 samples of lead-in
	if len(samples) != 14 {
		t.Fatalf("len(samples) = %d, want 14", len(samples))
	}
	for i := 0; i < 6; i++ {
		if samples[i] != 0 {
			t.Errorf("samples[%d] = %v, want 0", i, samples[i])
		}
	}
	if samples[6] != 0.5 || samples[7] != 0.5 {
		t.Errorf("first frame = (%v, %v), want (0.5, 0.5)", samples[6], samples[7])
	}
}

func TestMixer_Append(t *testing.T) {
	t.Parallel()

	mixer := NewMixer(1000, 1, 2)

	if err := mixer.Append(constantSound(0.2, 10, 1000, 1)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if math.Abs(mixer.LengthMs()-10) > 1e-9 {
		t.Fatalf("LengthMs() = %v, want 10", mixer.LengthMs())
	}

	if err := mixer.Append(constantSound(0.8, 10, 1000, 1)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	samples := mixer.Finalize().Samples()
	if len(samples) != 20 {
		t.Fatalf("len(samples) = %d, want 20", len(samples))
	}
	if samples[5] != 0.2 || samples[15] != 0.8 {
		t.Errorf("samples[5]/[15] = %v/%v, want 0.2/0.8", samples[5], samples[15])
	}
}

func TestMixer_FinalizeInRange(t *testing.T) {
	t.Parallel()

	// A buffer within full scale is emitted untouched
	mixer := NewMixer(1000, 1, 2)
	if err := mixer.Overlay(constantSound(0.9, 10, 1000, 1), 0); err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}

	for i, v := range mixer.Finalize().Samples() {
		if v != 0.9 {
			t.Errorf("samples[%d] = %v, want 0.9 (no normalization)", i, v)
		}
	}
}

func TestMixer_FinalizeNormalizesClipping(t *testing.T) {
	t.Parallel()

	// Two full-scale sounds sum to 2.0; the peak is scaled back to 1.0
	mixer := NewMixer(1000, 1, 2)
	loud := constantSound(1.0, 10, 1000, 1)
	if err := mixer.Overlay(loud, 0); err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}
	if err := mixer.Overlay(loud, 0); err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}

	// Half-scale overlaid once, scaled by the same factor
	quiet := constantSound(0.5, 10, 1000, 1)
	if err := mixer.Overlay(quiet, 10); err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}

	samples := mixer.Finalize().Samples()
	for i := 0; i < 10; i++ {
		if math.Abs(float64(samples[i]-1.0)) > 1e-6 {
			t.Errorf("samples[%d] = %v, want 1.0", i, samples[i])
		}
	}
	for i := 10; i < 20; i++ {
		if math.Abs(float64(samples[i]-0.25)) > 1e-6 {
			t.Errorf("samples[%d] = %v, want 0.25", i, samples[i])
		}
	}
}

func TestMixer_FinalizeEmpty(t *testing.T) {
	t.Parallel()

	mixer := NewMixer(44100, 2, 2)
	track := mixer.Finalize()

	if len(track.Samples()) != 0 {
		t.Errorf("empty mix has %d samples, want 0", len(track.Samples()))
	}
	if track.FrameRate() != 44100 || track.Channels() != 2 || track.SampleWidth() != 2 {
		t.Errorf("track format = %d/%d/%d, want 44100/2/2",
			track.FrameRate(), track.Channels(), track.SampleWidth())
	}
}
