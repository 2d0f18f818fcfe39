package audio

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// captureEncoder records the parameters Track.Save hands to its encoder.
type captureEncoder struct {
	params  EncodeParams
	samples int
	fail    error
}

func (e *captureEncoder) EncodeTrack(w io.WriteSeeker, samples []float32, p EncodeParams) error {
	if e.fail != nil {
		return e.fail
	}
	e.params = p
	e.samples = len(samples)
	_, err := w.Write([]byte("data"))
	return err
}

func testTrack(seconds float64, frameRate, channels int) *Track {
	frames := int(seconds * float64(frameRate))
	return &Track{
		samples:     make([]float32, frames*channels),
		frameRate:   frameRate,
		channels:    channels,
		sampleWidth: 2,
	}
}

func TestTrackDurationSeconds(t *testing.T) {
	t.Parallel()

	track := testTrack(2.5, 44100, 2)
	if d := track.DurationSeconds(); math.Abs(d-2.5) > 1e-9 {
		t.Errorf("DurationSeconds() = %v, want 2.5", d)
	}
}

func TestTrackBitrateFor(t *testing.T) {
	t.Parallel()

	track := testTrack(10, 44100, 2)

	tests := []struct {
		name string
		opts SaveOptions
		want float64
	}{
		{
			name: "no size target",
			opts: SaveOptions{TargetBitrate: 320},
			want: 320,
		},
		{
			// 200 kB over 10 s allows only 160 kbps
			name: "size target caps bitrate",
			opts: SaveOptions{TargetBitrate: 320, TargetSize: 200},
			want: 160,
		},
		{
			// 4000 kB over 10 s would allow 3200 kbps; the target wins
			name: "generous size target",
			opts: SaveOptions{TargetBitrate: 320, TargetSize: 4000},
			want: 320,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := track.bitrateFor(tt.opts)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("bitrateFor(%+v) = %v, want %v", tt.opts, got, tt.want)
			}
		})
	}
}

func TestTrackSave(t *testing.T) {
	t.Parallel()

	track := testTrack(1, 8000, 2)
	path := filepath.Join(t.TempDir(), "out.wav")

	enc := &captureEncoder{}
	err := track.Save(path, SaveOptions{TargetBitrate: 320}, enc)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Zero-valued options fall back to the track's own format
	if enc.params.SampleRate != 8000 || enc.params.Channels != 2 || enc.params.BitDepth != 16 {
		t.Errorf("encode params = %+v, want 8000/2/16", enc.params)
	}
	if enc.samples != len(track.Samples()) {
		t.Errorf("encoder got %d samples, want %d", enc.samples, len(track.Samples()))
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestTrackSave_EncoderFailureRemovesFile(t *testing.T) {
	t.Parallel()

	track := testTrack(1, 8000, 1)
	path := filepath.Join(t.TempDir(), "out.wav")

	wantErr := errors.New("encoder broke")
	err := track.Save(path, SaveOptions{}, &captureEncoder{fail: wantErr})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Save() error = %v, want wrapped %v", err, wantErr)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed Save() left a partial output file behind")
	}
}
