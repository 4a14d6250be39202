package dither

import (
	"fmt"
	"strings"
)

// Shaping selects an error-feedback filter that moves quantization noise
// towards high frequencies.
type Shaping int

const (
	ShapingNone Shaping = iota
	// ShapingFirstOrder feeds back the previous error.
	ShapingFirstOrder
	// ShapingSecondOrder is a gentle second-order highpass.
	ShapingSecondOrder
	// ShapingFWeighted is a ninth-order F-weighted curve for 44.1/48 kHz.
	ShapingFWeighted

	numShapings
)

var shapings = [numShapings]struct {
	name   string
	coeffs []float64
}{
	ShapingNone:        {"none", nil},
	ShapingFirstOrder:  {"efb", []float64{1}},
	ShapingSecondOrder: {"2sc", []float64{1.0, -0.5}},
	ShapingFWeighted: {"9fc", []float64{
		2.412, -3.370, 3.937, -4.174, 3.353,
		-2.205, 1.281, -0.569, 0.0847,
	}},
}

func (s Shaping) String() string {
	if s.Valid() {
		return shapings[s].name
	}
	return fmt.Sprintf("Shaping(%d)", int(s))
}

// Valid reports whether s is a known shaping filter.
func (s Shaping) Valid() bool { return s >= 0 && s < numShapings }

// ParseShaping accepts the names returned by Shaping.String.
func ParseShaping(name string) (Shaping, error) {
	for i := range shapings {
		if strings.EqualFold(name, shapings[i].name) {
			return Shaping(i), nil
		}
	}
	return ShapingNone, fmt.Errorf("dither: unknown shaping %q", name)
}

func (s Shaping) coefficients() []float64 {
	if !s.Valid() {
		return nil
	}
	return shapings[s].coeffs
}

// shaper subtracts weighted past errors from each input. history is a
// ring with pos at the most recent error.
type shaper struct {
	coeffs  []float64
	history []float64
	pos     int
}

func newShaper(coeffs []float64) *shaper {
	return &shaper{coeffs: coeffs, history: make([]float64, len(coeffs))}
}

func (s *shaper) shape(x float64) float64 {
	n := len(s.coeffs)
	for i, c := range s.coeffs {
		x -= c * s.history[(s.pos-i+n)%n]
	}
	return x
}

func (s *shaper) record(err float64) {
	n := len(s.history)
	if n == 0 {
		return
	}
	s.pos = (s.pos + 1) % n
	s.history[s.pos] = err
}

func (s *shaper) reset() {
	clear(s.history)
	s.pos = 0
}
