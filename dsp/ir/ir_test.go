package ir

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-irfx/internal/testutil"
)

func TestPrepareMonoToStereo(t *testing.T) {
	src := &ImpulseResponse{SampleRate: 48000, Channels: [][]float64{{1, 0.5, 0.25}}}

	got, err := src.Prepare(48000, WithNormalize(false))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if len(got.Channels) != 2 {
		t.Fatalf("channels = %d, want 2", len(got.Channels))
	}
	for ch := range got.Channels {
		testutil.RequireSliceNearlyEqual(t, got.Channels[ch], []float64{1, 0.5, 0.25}, 0)
	}
}

func TestPrepareDropsExtraChannels(t *testing.T) {
	src := &ImpulseResponse{SampleRate: 48000, Channels: [][]float64{{1}, {0.5}, {0.25}}}

	got, err := src.Prepare(48000, WithNormalize(false))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(got.Channels) != 2 || got.Channels[1][0] != 0.5 {
		t.Fatalf("channels = %v, want first two", got.Channels)
	}
}

func TestPrepareTrim(t *testing.T) {
	src := &ImpulseResponse{
		SampleRate: 48000,
		Channels: [][]float64{
			{0, 0, 0, 0.5, 0.25, 1e-6, 0},
			{0, 0, 2e-4, 0, 0.2, 0.05, 0},
		},
	}

	got, err := src.Prepare(48000, WithNormalize(false))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	// Leading edge is the earliest sample above -80 dB on any channel.
	testutil.RequireSliceNearlyEqual(t, got.Channels[0], []float64{0, 0.5, 0.25, 1e-6}, 0)
	testutil.RequireSliceNearlyEqual(t, got.Channels[1], []float64{2e-4, 0, 0.2, 0.05}, 0)

	loose, err := src.Prepare(48000, WithNormalize(false), WithTrimThresholdDB(-20))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, loose.Channels[0], []float64{0.5, 0.25}, 0)
}

func TestPrepareNoTrim(t *testing.T) {
	src := &ImpulseResponse{SampleRate: 48000, Channels: [][]float64{{0, 1, 0}}}

	got, err := src.Prepare(48000, WithNormalize(false), WithTrim(false))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if got.Frames() != 3 {
		t.Fatalf("Frames() = %d, want 3", got.Frames())
	}
}

func TestPrepareNormalize(t *testing.T) {
	src := &ImpulseResponse{
		SampleRate: 48000,
		Channels:   [][]float64{{0.6, 0.8}, {0.3, 0.4}},
	}

	got, err := src.Prepare(48000)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	// Loudest channel has energy 1; both scale by the same factor.
	testutil.RequireSliceNearlyEqual(t, got.Channels[0], []float64{0.075, 0.1}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, got.Channels[1], []float64{0.0375, 0.05}, 1e-12)
}

func TestPrepareResamples(t *testing.T) {
	src := &ImpulseResponse{SampleRate: 44100, Channels: [][]float64{testutil.Impulse(4410, 0)}}

	got, err := src.Prepare(48000, WithTrim(false), WithForceStereo(false))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if got.SampleRate != 48000 {
		t.Fatalf("SampleRate = %v, want 48000", got.SampleRate)
	}
	if len(got.Channels) != 1 || got.Frames() != 4800 {
		t.Fatalf("shape = %d x %d, want 1 x 4800", len(got.Channels), got.Frames())
	}
	if math.Abs(got.Duration()-0.1) > 1e-9 {
		t.Fatalf("Duration() = %v, want 0.1", got.Duration())
	}
	testutil.RequireFinite(t, got.Channels[0])
}

func TestPrepareLeavesReceiverUnchanged(t *testing.T) {
	src := &ImpulseResponse{SampleRate: 48000, Channels: [][]float64{{0, 0.5, 0}}}
	orig := src.Clone()

	if _, err := src.Prepare(48000); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, src.Channels[0], orig.Channels[0], 0)
}

func TestPrepareErrors(t *testing.T) {
	tests := []struct {
		name string
		src  *ImpulseResponse
		rate float64
		want error
	}{
		{"empty", &ImpulseResponse{SampleRate: 48000}, 48000, ErrEmptyImpulseResponse},
		{"silent", &ImpulseResponse{SampleRate: 48000, Channels: [][]float64{{0, 0}}}, 48000, ErrEmptyImpulseResponse},
		{"bad target", &ImpulseResponse{SampleRate: 48000, Channels: [][]float64{{1}}}, 0, ErrInvalidSampleRate},
		{"bad source", &ImpulseResponse{SampleRate: math.NaN(), Channels: [][]float64{{1}}}, 48000, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.src.Prepare(tt.rate); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
