package signalchain

import (
	"errors"
	"math"
	"testing"
)

func TestRegistryIsComplete(t *testing.T) {
	seen := make(map[string]bool)
	for _, id := range Params() {
		s := id.Spec()
		if s.Name == "" {
			t.Fatalf("%d has no spec", int(id))
		}
		if seen[s.Name] {
			t.Fatalf("duplicate name %q", s.Name)
		}
		seen[s.Name] = true

		if s.Min > s.Max || s.Default < s.Min || s.Default > s.Max {
			t.Errorf("%s: default %v outside [%v, %v]", s.Name, s.Default, s.Min, s.Max)
		}
		if s.Kind == KindChoice && len(s.Choices) != int(s.Max)+1 {
			t.Errorf("%s: %d choices for max %v", s.Name, len(s.Choices), s.Max)
		}
		if id.Smoothed() != (s.Kind == KindFloat) {
			t.Errorf("%s: Smoothed() = %v for kind %v", s.Name, id.Smoothed(), s.Kind)
		}
	}
}

func TestDefaults(t *testing.T) {
	tests := []struct {
		id   ParamID
		want float64
	}{
		{ParamIRLowCut, 20},
		{ParamIRHighCut, 20000},
		{ParamEQMidFreq, 550},
		{ParamDrive, 6},
		{ParamSaturationMix, 0},
		{ParamDelayFeedback, 30},
		{ParamDelayTime, 375},
		{ParamDelayNote, 2},
		{ParamOutputMode, OutputStereo},
		{ParamBypass, 0},
	}

	for _, tt := range tests {
		if got := tt.id.Spec().Default; got != tt.want {
			t.Errorf("%v default = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSpecClamp(t *testing.T) {
	tests := []struct {
		name string
		id   ParamID
		in   float64
		want float64
	}{
		{"float below range", ParamIR1Level, -90, -60},
		{"float above range", ParamInputGain, 40, 12},
		{"float NaN uses default", ParamDelayTime, math.NaN(), 375},
		{"float Inf uses default", ParamDrive, math.Inf(1), 6},
		{"bool snaps high", ParamDelaySync, 0.7, 1},
		{"bool snaps low", ParamDelaySync, 0.2, 0},
		{"choice rounds", ParamDelayNote, 3.4, 3},
		{"choice clamps", ParamSaturationMode, 9, 2},
		{"choice negative", ParamDelayMode, -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Spec().Clamp(tt.in); got != tt.want {
				t.Fatalf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSpecParseAndFormat(t *testing.T) {
	tests := []struct {
		id     ParamID
		text   string
		want   float64
		format string
	}{
		{ParamDelayNote, "1/4 dotted", 5, "1/4 Dotted"},
		{ParamDelayNote, "3", 3, "1/8"},
		{ParamSaturationMode, "typec", 2, "TypeC"},
		{ParamDelayMode, "Tape", 1, "Tape"},
		{ParamDelayTopology, "stereo", 1, "Stereo"},
		{ParamDelaySync, "on", 1, "on"},
		{ParamBypass, "false", 0, "off"},
		{ParamDelayTime, "250", 250, "250.00 ms"},
		{ParamDrive, "20", 12, "12.00"},
		{ParamOutputMode, "mono", OutputMono, "Mono"},
	}

	for _, tt := range tests {
		s := tt.id.Spec()
		got, err := s.Parse(tt.text)
		if err != nil {
			t.Fatalf("%v Parse(%q): %v", tt.id, tt.text, err)
		}
		if got != tt.want {
			t.Errorf("%v Parse(%q) = %v, want %v", tt.id, tt.text, got, tt.want)
		}
		if f := s.Format(got); f != tt.format {
			t.Errorf("%v Format(%v) = %q, want %q", tt.id, got, f, tt.format)
		}
	}

	if _, err := ParamDelayTime.Spec().Parse("soon"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLookup(t *testing.T) {
	id, err := Lookup("delaytime")
	if err != nil || id != ParamDelayTime {
		t.Fatalf("Lookup = %v, %v", id, err)
	}
	if _, err := Lookup("reverb"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("err = %v, want ErrUnknownParam", err)
	}
	if ParamID(-1).Valid() || ParamID(NumParams).String() == "" {
		t.Fatal("out-of-range IDs must be invalid and still print")
	}
}

func TestStore(t *testing.T) {
	s := NewStore()
	if got := s.Value(ParamDelayTime); got != 375 {
		t.Fatalf("default delay time = %v", got)
	}

	s.Set(ParamDelayFeedback, 150)
	if got := s.Value(ParamDelayFeedback); got != 100 {
		t.Fatalf("feedback = %v, want clamped 100", got)
	}

	s.SetBool(ParamDelaySync, true)
	if !s.Bool(ParamDelaySync) {
		t.Fatal("sync not set")
	}

	if err := s.SetText("DelayNote", "1/16"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if got := s.Choice(ParamDelayNote); got != 4 {
		t.Fatalf("note = %d, want 4", got)
	}
	if err := s.SetText("nope", "1"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("err = %v", err)
	}

	snap := s.Snapshot()
	if snap[ParamDelayFeedback] != 100 || snap[ParamDelaySync] != 1 {
		t.Fatalf("snapshot = %v", snap)
	}

	s.Set(ParamID(99), 1)
	if s.Value(ParamID(99)) != 0 {
		t.Fatal("unknown ID must read as 0")
	}

	s.ResetDefaults()
	if s.Value(ParamDelayFeedback) != 30 || s.Bool(ParamDelaySync) {
		t.Fatal("ResetDefaults did not restore defaults")
	}
}

func TestTransportTempo(t *testing.T) {
	tests := []struct {
		name string
		tr   Transport
		want float64
	}{
		{"nil transport", nil, 120},
		{"zero value reports none", &FixedTempo{}, 120},
		{"fixed tempo", NewFixedTempo(90), 90},
		{"negative tempo", NewFixedTempo(-5), 120},
		{"NaN tempo", NewFixedTempo(math.NaN()), 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hostTempo(tt.tr); got != tt.want {
				t.Fatalf("hostTempo = %v, want %v", got, tt.want)
			}
		})
	}
}
