package ir

import (
	"errors"
	"math"
	"testing"
)

// exponentialDecay returns an envelope whose energy falls 60 dB in
// decaySamples.
func exponentialDecay(frames, decaySamples int) []float64 {
	tau := float64(decaySamples) / (3 * math.Ln10)
	out := make([]float64, frames)
	for i := range out {
		out[i] = math.Exp(-float64(i) / tau)
	}
	return out
}

func TestAnalyzeDecayTime(t *testing.T) {
	tests := []struct {
		name   string
		frames int
		want   float64
		tol    float64
	}{
		{"measured", 2000, 0.5, 0.002},
		{"extrapolated", 300, 0.5, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ImpulseResponse{SampleRate: 1000, Channels: [][]float64{exponentialDecay(tt.frames, 500)}}
			a, err := r.Analyze()
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if math.Abs(a.DecayTime-tt.want) > tt.tol {
				t.Fatalf("DecayTime = %v, want %v", a.DecayTime, tt.want)
			}
		})
	}
}

func TestAnalyzePeakAndCentroid(t *testing.T) {
	decay := exponentialDecay(2000, 500)
	left := append(make([]float64, 100), decay[:1900]...)
	right := make([]float64, 2000)
	r := &ImpulseResponse{SampleRate: 1000, Channels: [][]float64{left, right}}

	a, err := r.Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.PeakIndex != 100 || a.PeakDB != 0 {
		t.Fatalf("peak = %d at %v dB, want 100 at 0 dB", a.PeakIndex, a.PeakDB)
	}
	if a.Frames != 2000 || a.Channels != 2 || a.Duration != 2 {
		t.Fatalf("shape = %d frames, %d channels, %v s", a.Frames, a.Channels, a.Duration)
	}

	ratio := decay[1] * decay[1]
	want := ratio / (1 - ratio) / 1000
	if math.Abs(a.CenterTime-want) > 1e-4 {
		t.Fatalf("CenterTime = %v, want %v", a.CenterTime, want)
	}
}

func TestAnalyzeEdgeCases(t *testing.T) {
	if _, err := (&ImpulseResponse{SampleRate: 48000}).Analyze(); !errors.Is(err, ErrEmptyImpulseResponse) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := (&ImpulseResponse{Channels: [][]float64{{1}}}).Analyze(); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("no rate: %v", err)
	}

	silent, err := (&ImpulseResponse{SampleRate: 48000, Channels: [][]float64{make([]float64, 8)}}).Analyze()
	if err != nil {
		t.Fatalf("silent: %v", err)
	}
	if silent.DecayTime != 0 || !math.IsInf(silent.PeakDB, -1) {
		t.Fatalf("silent analysis = %+v", silent)
	}

	// A lone impulse has no measurable decay slope.
	single, err := (&ImpulseResponse{SampleRate: 48000, Channels: [][]float64{{0, 1}}}).Analyze()
	if err != nil {
		t.Fatalf("impulse: %v", err)
	}
	if single.DecayTime != 0 || single.CenterTime != 0 {
		t.Fatalf("impulse analysis = %+v", single)
	}
}
