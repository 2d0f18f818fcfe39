package audio

import (
	"math"
	"testing"
)

func TestReadAll(t *testing.T) {
	t.Parallel()

	src := newConstantSource(8000, 2, 100, 0.5)

	sound, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if sound.SampleRate != 8000 || sound.Channels != 2 {
		t.Errorf("sound format = %d Hz / %d ch, want 8000 / 2", sound.SampleRate, sound.Channels)
	}
	if len(sound.Samples) != 200 {
		t.Fatalf("len(Samples) = %d, want 200", len(sound.Samples))
	}
	if sound.Frames() != 100 {
		t.Errorf("Frames() = %d, want 100", sound.Frames())
	}
	for i, v := range sound.Samples {
		if v != 0.5 {
			t.Fatalf("Samples[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestSoundDurationMs(t *testing.T) {
	t.Parallel()

	sound := &Sound{Samples: make([]float32, 8000*2), SampleRate: 8000, Channels: 2}
	if d := sound.DurationMs(); math.Abs(d-1000) > 1e-9 {
		t.Errorf("DurationMs() = %v, want 1000", d)
	}
}

func TestSoundSync_NoConversion(t *testing.T) {
	t.Parallel()

	sound := &Sound{Samples: []float32{0.1, 0.2}, SampleRate: 44100, Channels: 2}

	synced, err := sound.Sync(44100, 2)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if synced != sound {
		t.Error("Sync() to identical format should return the receiver")
	}
}

func TestSoundSync_Channels(t *testing.T) {
	t.Parallel()

	// Mono at target rate: only the channel layout changes
	sound := &Sound{
		Samples:    []float32{0.1, 0.2, 0.3},
		SampleRate: 44100,
		Channels:   1,
	}

	synced, err := sound.Sync(44100, 2)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if synced.Channels != 2 {
		t.Fatalf("synced.Channels = %d, want 2", synced.Channels)
	}
	want := []float32{0.1, 0.1, 0.2, 0.2, 0.3, 0.3}
	if len(synced.Samples) != len(want) {
		t.Fatalf("len(Samples) = %d, want %d", len(synced.Samples), len(want))
	}
	for i, v := range want {
		if synced.Samples[i] != v {
			t.Errorf("Samples[%d] = %v, want %v", i, synced.Samples[i], v)
		}
	}
}

func TestSoundSync_Rate(t *testing.T) {
	t.Parallel()

	src := newSineSource(44100, 1, 44100, 440.0)
	sound, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	synced, err := sound.Sync(22050, 1)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if synced.SampleRate != 22050 {
		t.Fatalf("synced.SampleRate = %d, want 22050", synced.SampleRate)
	}

	// Half the rate halves the frame count (within resampler edge slack)
	expected := 22050
	tolerance := 200
	if synced.Frames() < expected-tolerance || synced.Frames() > expected+tolerance {
		t.Errorf("synced.Frames() = %d, want ≈%d (±%d)", synced.Frames(), expected, tolerance)
	}
}

func TestSoundChangeSpeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		speed float64
		want  int // expected frames
	}{
		{name: "double speed", speed: 2.0, want: 4000},
		{name: "half speed", speed: 0.5, want: 16000},
		{name: "octave up", speed: 2.0, want: 4000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSineSource(8000, 1, 8000, 440.0)
			sound, err := ReadAll(src)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}

			shifted, err := sound.ChangeSpeed(tt.speed)
			if err != nil {
				t.Fatalf("ChangeSpeed(%v) error = %v", tt.speed, err)
			}

			// The rate is unchanged, only the length shrinks or stretches
			if shifted.SampleRate != 8000 {
				t.Errorf("shifted.SampleRate = %d, want 8000", shifted.SampleRate)
			}

			tolerance := 100
			if shifted.Frames() < tt.want-tolerance || shifted.Frames() > tt.want+tolerance {
				t.Errorf("shifted.Frames() = %d, want ≈%d (±%d)", shifted.Frames(), tt.want, tolerance)
			}
		})
	}
}

func TestSoundChangeSpeed_Identity(t *testing.T) {
	t.Parallel()

	sound := &Sound{Samples: []float32{0.1, 0.2}, SampleRate: 8000, Channels: 1}

	same, err := sound.ChangeSpeed(1.0)
	if err != nil {
		t.Fatalf("ChangeSpeed(1.0) error = %v", err)
	}
	if same != sound {
		t.Error("ChangeSpeed(1.0) should return the receiver")
	}
}

func TestSoundChangeSpeed_InvalidSpeed(t *testing.T) {
	t.Parallel()

	sound := &Sound{Samples: []float32{0.1}, SampleRate: 8000, Channels: 1}

	for _, speed := range []float64{0, -1.5} {
		if _, err := sound.ChangeSpeed(speed); err != ErrInvalidSpeed {
			t.Errorf("ChangeSpeed(%v) error = %v, want ErrInvalidSpeed", speed, err)
		}
	}
}

func TestSoundGain(t *testing.T) {
	t.Parallel()

	sound := &Sound{Samples: []float32{0.5, -0.5, 1.0}, SampleRate: 8000, Channels: 1}

	half := sound.Gain(0.5)
	want := []float32{0.25, -0.25, 0.5}
	for i, v := range want {
		if math.Abs(float64(half.Samples[i]-v)) > 1e-6 {
			t.Errorf("Gain(0.5).Samples[%d] = %v, want %v", i, half.Samples[i], v)
		}
	}

	// The receiver is untouched
	if sound.Samples[0] != 0.5 {
		t.Error("Gain() mutated the receiver")
	}
}

func TestSoundPan_Center(t *testing.T) {
	t.Parallel()

	sound := &Sound{Samples: []float32{0.5, 0.5}, SampleRate: 8000, Channels: 2}

	if panned := sound.Pan(0); panned != sound {
		t.Error("Pan(0) should return the receiver unchanged")
	}
}

func TestSoundPan_FullLeft(t *testing.T) {
	t.Parallel()

	sound := &Sound{Samples: []float32{0.5, 0.5, 0.5, 0.5}, SampleRate: 8000, Channels: 2}

	panned := sound.Pan(-1)

	// Full-left: right channel is silenced, left gains sqrt(2)
	wantLeft := float32(0.5 * math.Sqrt2)
	for f := 0; f < 2; f++ {
		left := panned.Samples[f*2]
		right := panned.Samples[f*2+1]
		if math.Abs(float64(left-wantLeft)) > 1e-6 {
			t.Errorf("frame[%d] left = %v, want %v", f, left, wantLeft)
		}
		if math.Abs(float64(right)) > 1e-6 {
			t.Errorf("frame[%d] right = %v, want 0", f, right)
		}
	}
}

func TestSoundPan_EqualPower(t *testing.T) {
	t.Parallel()

	sound := &Sound{Samples: []float32{1.0, 1.0}, SampleRate: 8000, Channels: 2}

	// At every position the channel gains sum to constant power 2
	for _, pan := range []float64{-1, -0.5, -0.1, 0.3, 0.8, 1} {
		panned := sound.Pan(pan)
		l := float64(panned.Samples[0])
		r := float64(panned.Samples[1])
		power := l*l + r*r
		if math.Abs(power-2) > 1e-6 {
			t.Errorf("Pan(%v) power = %v, want 2", pan, power)
		}
	}
}

func TestSoundPan_ClampsRange(t *testing.T) {
	t.Parallel()

	sound := &Sound{Samples: []float32{0.5, 0.5}, SampleRate: 8000, Channels: 2}

	beyond := sound.Pan(-3)
	atEdge := sound.Pan(-1)
	if beyond.Samples[0] != atEdge.Samples[0] || beyond.Samples[1] != atEdge.Samples[1] {
		t.Error("Pan(-3) should behave like Pan(-1)")
	}
}

func TestSoundPan_MonoUnchanged(t *testing.T) {
	t.Parallel()

	sound := &Sound{Samples: []float32{0.5}, SampleRate: 8000, Channels: 1}

	if panned := sound.Pan(-1); panned != sound {
		t.Error("Pan() on a mono sound should return the receiver")
	}
}

func TestKeyToSpeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  float64
		want float64
	}{
		{key: 0, want: 1},
		{key: 12, want: 2},
		{key: -12, want: 0.5},
		{key: 24, want: 4},
		{key: 1, want: math.Pow(2, 1.0/12)},
	}

	for _, tt := range tests {
		tt := tt
		if got := KeyToSpeed(tt.key); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("KeyToSpeed(%v) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
