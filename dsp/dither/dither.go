// Package dither reduces rendered float audio to an integer PCM word length
// with optional dither noise and error-feedback noise shaping.
//
// Quantized samples land exactly on the grid used by ir.Encode for the
// same bit depth, so encoding a processed slice adds no second rounding.
package dither

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// ErrBitDepth is returned for word lengths outside [MinBitDepth, MaxBitDepth].
var ErrBitDepth = errors.New("dither: unsupported bit depth")

const (
	MinBitDepth = 8
	MaxBitDepth = 24
)

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// None rounds without added noise.
	None Type = iota
	// Rectangular adds uniform noise of one LSB peak to peak.
	Rectangular
	// Triangular adds TPDF noise of two LSB peak to peak.
	Triangular

	numTypes
)

var typeNames = [numTypes]string{"none", "rect", "tpdf"}

func (t Type) String() string {
	if t >= 0 && t < numTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool { return t >= 0 && t < numTypes }

// ParseType accepts the names returned by Type.String.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("dither: unknown type %q", s)
}

type config struct {
	typ     Type
	shaping Shaping
	rng     *rand.Rand
}

// Option configures a Quantizer.
type Option func(*config)

// WithType sets the dither noise. The default is Triangular.
func WithType(t Type) Option {
	return func(c *config) {
		if t.Valid() {
			c.typ = t
		}
	}
}

// WithShaping sets the error-feedback filter. The default is ShapingNone.
func WithShaping(s Shaping) Option {
	return func(c *config) {
		if s.Valid() {
			c.shaping = s
		}
	}
}

// WithSeed makes the dither noise reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// Quantizer reduces one channel to a fixed word length. It keeps the
// shaping history between calls, so use one per channel.
type Quantizer struct {
	typ    Type
	rng    *rand.Rand
	shaper *shaper
	full   float64
}

// New returns a quantizer for bitDepth bits.
func New(bitDepth int, opts ...Option) (*Quantizer, error) {
	if bitDepth < MinBitDepth || bitDepth > MaxBitDepth {
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}

	cfg := config{typ: Triangular}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Quantizer{
		typ:    cfg.typ,
		rng:    cfg.rng,
		shaper: newShaper(cfg.shaping.coefficients()),
		full:   math.Exp2(float64(bitDepth-1)) - 1,
	}, nil
}

// Step returns the size of one LSB in float units.
func (q *Quantizer) Step() float64 { return 1 / q.full }

// Level quantizes x in [-1, 1] and returns the integer level.
func (q *Quantizer) Level(x float64) int {
	shaped := q.shaper.shape(x * q.full)
	level := math.Round(shaped + q.noise())
	level = max(-q.full, min(q.full, level))
	q.shaper.record(level - shaped)
	return int(level)
}

// Process quantizes data in place.
func (q *Quantizer) Process(data []float64) {
	for i, x := range data {
		data[i] = float64(q.Level(x)) / q.full
	}
}

// Reset clears the shaping history.
func (q *Quantizer) Reset() { q.shaper.reset() }

func (q *Quantizer) noise() float64 {
	switch q.typ {
	case Rectangular:
		return q.rng.Float64() - 0.5
	case Triangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
