package saturation

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/filter/biquad"
	"github.com/cwbudde/algo-irfx/internal/testutil"
)

func preparedEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := New(opts...)
	if err := e.Prepare(48000, 2); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return e
}

func stereoNoise(n int) *buffer.Buffer {
	return buffer.FromChannels(testutil.Stereo(
		testutil.DeterministicNoise(1, 0.8, n),
		testutil.DeterministicNoise(2, 0.8, n),
	))
}

func TestPrepareValidation(t *testing.T) {
	e := New()
	if err := e.Prepare(0, 2); !errors.Is(err, core.ErrInvalidSampleRate) {
		t.Fatalf("err = %v, want ErrInvalidSampleRate", err)
	}
	if err := e.Prepare(44100, 3); !errors.Is(err, core.ErrInvalidChannels) {
		t.Fatalf("err = %v, want ErrInvalidChannels", err)
	}
	if err := e.Prepare(44100, 1); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if e.Channels() != 1 {
		t.Fatalf("Channels() = %d, want 1", e.Channels())
	}
}

func TestProcessBeforePrepareIsNoop(t *testing.T) {
	e := New(WithDrive(12))
	buf := stereoNoise(64)
	want := append([]float64(nil), buf.Channel(0)...)
	e.Process(buf)
	testutil.RequireSliceNearlyEqual(t, buf.Channel(0), want, 0)
}

func TestZeroDriveOrMixLeavesSignalUnchanged(t *testing.T) {
	tests := []struct {
		name       string
		drive, mix float64
	}{
		{"zero drive", 0, 1},
		{"zero mix", 8, 0},
		{"negative drive", -3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := preparedEngine(t, WithDrive(tt.drive), WithMix(tt.mix), WithCharacter(TypeC))
			buf := stereoNoise(256)
			want := testutil.Stereo(buf.Channel(0), buf.Channel(1))
			e.Process(buf)
			for ch := 0; ch < 2; ch++ {
				testutil.RequireSliceNearlyEqual(t, buf.Channel(ch), want[ch], 0)
			}
			if got := e.ProcessSample(0.42); got != 0.42 {
				t.Fatalf("ProcessSample = %v, want 0.42", got)
			}
		})
	}
}

func TestTypeBSymmetry(t *testing.T) {
	pos := preparedEngine(t, WithCharacter(TypeB), WithDrive(6), WithMix(1))
	neg := preparedEngine(t, WithCharacter(TypeB), WithDrive(6), WithMix(1))

	bp := buffer.FromChannels([][]float64{{1}, {1}})
	bn := buffer.FromChannels([][]float64{{-1}, {-1}})
	pos.Process(bp)
	neg.Process(bn)
	for ch := 0; ch < 2; ch++ {
		if bp.Channel(ch)[0] != -bn.Channel(ch)[0] {
			t.Fatalf("ch %d: %v vs %v not exact negatives", ch, bp.Channel(ch)[0], bn.Channel(ch)[0])
		}
		if bp.Channel(ch)[0] == 0 {
			t.Fatal("expected non-zero output")
		}
	}

	if a, b := pos.ProcessSample(1), pos.ProcessSample(-1); a != -b {
		t.Fatalf("ProcessSample: %v vs %v", a, b)
	}
}

func TestShapesAndAttenuation(t *testing.T) {
	x := 0.8
	tests := []struct {
		c    Character
		want float64
	}{
		{TypeA, math.Tanh(x + 0.1*x*x*x)},
		{TypeB, math.Tanh(x)},
		{TypeC, math.Tanh(x + 0.3*x*x*x)},
	}
	for _, tt := range tests {
		if got := tt.c.Shape(x); math.Abs(got-tt.want) > 1e-3 {
			t.Fatalf("%v.Shape(%v) = %v, want %v", tt.c, x, got, tt.want)
		}
		if got := tt.c.Attenuation(); got != 0.7 {
			t.Fatalf("%v.Attenuation() = %v, want 0.7", tt.c, got)
		}
	}
}

func TestFullDriveStaysBounded(t *testing.T) {
	for _, c := range []Character{TypeA, TypeB, TypeC} {
		e := preparedEngine(t, WithCharacter(c), WithDrive(MaxDrive), WithMix(1))
		buf := buffer.FromChannels(testutil.Dual(testutil.DeterministicSine(100, 48000, 4, 4800)))
		e.Process(buf)
		for ch := 0; ch < 2; ch++ {
			testutil.RequireFinite(t, buf.Channel(ch))
			// 0.7 attenuation plus the +2 dB shelf and low-pass overshoot.
			if p := buf.PeakChannel(ch); p > 1.0 {
				t.Fatalf("%v ch %d: peak %v exceeds 1.0", c, ch, p)
			}
		}
	}
}

func TestDriveMapping(t *testing.T) {
	e := New()
	tests := []struct{ drive, gain float64 }{
		{0, 1}, {6, 5.5}, {12, 10}, {20, 10}, {-1, 1},
	}
	for _, tt := range tests {
		e.SetDrive(tt.drive)
		if got := e.DriveGain(); math.Abs(got-tt.gain) > 1e-12 {
			t.Fatalf("drive %v: gain %v, want %v", tt.drive, got, tt.gain)
		}
	}
}

func TestMixClampAndCharacterValidation(t *testing.T) {
	e := New()
	e.SetMix(2)
	if e.Mix() != 1 {
		t.Fatalf("Mix() = %v, want 1", e.Mix())
	}
	e.SetMix(math.NaN())
	if e.Mix() != 0 {
		t.Fatalf("Mix() = %v, want 0 for NaN", e.Mix())
	}
	e.SetCharacter(TypeC)
	e.SetCharacter(Character(42))
	if e.Character() != TypeC {
		t.Fatalf("Character() = %v, want TypeC", e.Character())
	}
}

func TestCrossfadeAfterPreShelf(t *testing.T) {
	for _, c := range []Character{TypeA, TypeB, TypeC} {
		e := preparedEngine(t, WithCharacter(c), WithDrive(6), WithMix(0.5))
		in := testutil.DeterministicSine(150, 48000, 0.8, 960)
		buf := buffer.FromChannels(testutil.Dual(in))
		e.Process(buf)

		pre := biquad.NewCascade(1, 1)
		pre.Set(0, biquad.LowShelf(defaultPreShelfHz, defaultPreShelfDB, biquad.ButterworthQ, 48000))
		post := biquad.NewCascade(1, 1)
		post.Set(0, biquad.Lowpass(defaultPostCutHz, biquad.ButterworthQ, 48000))

		want := make([]float64, len(in))
		for i, x := range in {
			y := pre.Tick(0, x)
			wet := c.Shape(y*e.DriveGain()) * c.Attenuation()
			want[i] = post.Tick(0, 0.5*y+0.5*wet)
		}
		testutil.RequireSliceNearlyEqual(t, buf.Channel(0), want, 1e-12)
		testutil.RequireSliceNearlyEqual(t, buf.Channel(1), want, 1e-12)
	}
}

func TestExtraChannelsPassThrough(t *testing.T) {
	e := New(WithDrive(10))
	if err := e.Prepare(48000, 1); err != nil {
		t.Fatal(err)
	}
	buf := stereoNoise(32)
	right := append([]float64(nil), buf.Channel(1)...)
	e.Process(buf)
	testutil.RequireSliceNearlyEqual(t, buf.Channel(1), right, 0)
}

func TestParseCharacter(t *testing.T) {
	tests := []struct {
		in   string
		want Character
	}{
		{"TypeA", TypeA}, {"clean", TypeB}, {"BITE", TypeC}, {"typeb", TypeB},
	}
	for _, tt := range tests {
		got, err := ParseCharacter(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseCharacter(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseCharacter("fuzz"); err == nil {
		t.Fatal("expected error for unknown character")
	}
	if Character(9).String() != "Character(9)" {
		t.Fatalf("String() = %q", Character(9).String())
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	e := preparedEngine(t, WithDrive(6))
	buf := stereoNoise(512)
	allocs := testing.AllocsPerRun(50, func() {
		e.Process(buf)
	})
	if allocs != 0 {
		t.Fatalf("allocs = %v, want 0", allocs)
	}
}
