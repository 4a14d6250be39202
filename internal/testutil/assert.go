package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t on a length mismatch or on the first
// sample that differs from want by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i, g := range got {
		if d := math.Abs(g - want[i]); d > eps || math.IsNaN(d) {
			t.Fatalf("sample %d: got %v, want %v (|diff| %g > %g)", i, g, want[i], d, eps)
		}
	}
}

// RequireFinite fails t on the first NaN or Inf sample.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is %v", i, v)
		}
	}
}

// RequireSilent fails t unless every sample is exactly zero.
func RequireSilent(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if v != 0 {
			t.Fatalf("sample %d: got %v, want 0", i, v)
		}
	}
}

// Peak returns the largest magnitude in data.
func Peak(data []float64) float64 {
	var p float64
	for _, v := range data {
		p = max(p, math.Abs(v))
	}
	return p
}
