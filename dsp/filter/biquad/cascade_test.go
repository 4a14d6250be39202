package biquad

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/internal/testutil"
)

const eps = 1e-12

func testCoefficients() Coefficients {
	return Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
}

func TestNewCascadeIsTransparent(t *testing.T) {
	c := NewCascade(2, 3)
	if c.Channels() != 2 || c.Sections() != 3 {
		t.Fatalf("size = %dx%d, want 2x3", c.Channels(), c.Sections())
	}
	in := testutil.DeterministicNoise(1, 1, 64)
	got := append([]float64(nil), in...)
	c.ProcessChannel(1, got)
	testutil.RequireSliceNearlyEqual(t, got, in, 0)
}

func TestTickImpulseResponse(t *testing.T) {
	c := NewCascade(1, 1)
	c.Set(0, testCoefficients())
	want := []float64{0.25, 0.55, 0.35, 0.048, -0.0044, -0.0028}
	for i, w := range want {
		x := 0.0
		if i == 0 {
			x = 1
		}
		if y := c.Tick(0, x); math.Abs(y-w) > eps {
			t.Fatalf("sample %d: got %v, want %v", i, y, w)
		}
	}
}

func TestProcessChannelMatchesTick(t *testing.T) {
	b := Coefficients{B0: 0.1, B1: 0.2, B2: 0.1, A1: -0.5, A2: 0.1}
	for _, n := range []int{0, 1, 7, 64, 129} {
		ref := NewCascade(1, 2)
		ref.Set(0, testCoefficients())
		ref.Set(1, b)
		blk := NewCascade(1, 2)
		blk.Set(0, testCoefficients())
		blk.Set(1, b)

		in := testutil.DeterministicNoise(int64(n+1), 1, n)
		want := make([]float64, n)
		for i, x := range in {
			want[i] = ref.Tick(0, x)
		}
		got := append([]float64(nil), in...)
		blk.ProcessChannel(0, got)
		testutil.RequireSliceNearlyEqual(t, got, want, eps)
	}
}

func TestChannelsAreIndependent(t *testing.T) {
	c := NewCascade(2, 1)
	c.Set(0, testCoefficients())

	buf := buffer.New(3, 4)
	buf.Channel(0)[0] = 1
	buf.Channel(2)[0] = 1
	c.Process(buf)

	testutil.RequireSliceNearlyEqual(t, buf.Channel(0), []float64{0.25, 0.55, 0.35, 0.048}, eps)
	testutil.RequireSilent(t, buf.Channel(1))
	testutil.RequireSliceNearlyEqual(t, buf.Channel(2), []float64{1, 0, 0, 0}, 0)
}

func TestSetKeepsMemoryAndResetClears(t *testing.T) {
	c := NewCascade(1, 1)
	c.Set(0, testCoefficients())
	c.Tick(0, 1)

	// The pending memory (0.55) still reaches the output after the swap.
	c.Set(0, Identity())
	if c.Section(0) != Identity() {
		t.Fatal("coefficients not replaced")
	}
	if y := c.Tick(0, 0); math.Abs(y-0.55) > eps {
		t.Fatalf("after Set: %v, want 0.55", y)
	}

	c.Set(0, testCoefficients())
	c.Tick(0, 1)
	c.Reset()
	if y := c.Tick(0, 0); y != 0 {
		t.Fatalf("after Reset: %v, want 0", y)
	}
}

func TestCascadeMagnitude(t *testing.T) {
	c := NewCascade(1, 2)
	c.Set(0, testCoefficients())
	c.Set(1, testCoefficients())
	// H(1) = (0.25+0.5+0.25)/(1-0.2+0.04) per section.
	want := 2 * 20 * math.Log10(1/0.84)
	if got := c.MagnitudeDB(0, fs); math.Abs(got-want) > 1e-9 {
		t.Fatalf("DC gain = %v dB, want %v", got, want)
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	c := NewCascade(2, 3)
	c.Set(1, testCoefficients())
	buf := buffer.New(2, 256)
	allocs := testing.AllocsPerRun(100, func() {
		c.Process(buf)
	})
	if allocs != 0 {
		t.Fatalf("allocs = %v, want 0", allocs)
	}
}
