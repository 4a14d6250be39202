package smooth

import (
	"math"
	"sync/atomic"
)

// DefaultRampSeconds is the ramp length used when none is configured.
const DefaultRampSeconds = 0.05

// Linear ramps from its current value to the most recent target over a
// fixed number of samples. The ramp length does not depend on block size.
type Linear struct {
	pending atomic.Uint64

	current   float64
	target    float64
	step      float64
	remaining int
	rampLen   int
}

// NewLinear returns a smoother resting at value. Call Reset before use to
// configure the ramp length.
func NewLinear(value float64) *Linear {
	s := &Linear{}
	s.SetCurrentAndTarget(value)
	return s
}

// Reset configures the ramp length for sampleRate and snaps the current
// value to the target. Non-positive or non-finite inputs disable ramping.
func (s *Linear) Reset(sampleRate, rampSeconds float64) {
	steps := 0.0
	if sampleRate > 0 && rampSeconds > 0 {
		steps = math.Floor(sampleRate * rampSeconds)
	}
	if math.IsNaN(steps) || math.IsInf(steps, 0) || steps < 0 {
		steps = 0
	}
	s.rampLen = int(steps)
	s.target = s.Target()
	s.current = s.target
	s.remaining = 0
	s.step = 0
}

// SetTarget publishes a new destination. Safe to call from any goroutine.
// NaN and infinite values are ignored.
func (s *Linear) SetTarget(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	s.pending.Store(math.Float64bits(v))
}

// Target returns the most recently published destination.
func (s *Linear) Target() float64 {
	return math.Float64frombits(s.pending.Load())
}

// SetCurrentAndTarget jumps to v without ramping. It must not race with
// Advance.
func (s *Linear) SetCurrentAndTarget(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s.pending.Store(math.Float64bits(v))
	s.current = v
	s.target = v
	s.remaining = 0
	s.step = 0
}

// Advance consumes n samples of ramp progress, picking up any target
// published since the previous call.
func (s *Linear) Advance(n int) {
	s.sync()
	if n <= 0 || s.remaining == 0 {
		return
	}
	if n >= s.remaining {
		s.current = s.target
		s.remaining = 0
		s.step = 0
		return
	}
	s.remaining -= n
	s.current += s.step * float64(n)
}

// Next advances by one sample and returns the new value.
func (s *Linear) Next() float64 {
	s.Advance(1)
	return s.current
}

// Current returns the value at the current ramp position.
func (s *Linear) Current() float64 {
	return s.current
}

// IsSmoothing reports whether a ramp is in progress.
func (s *Linear) IsSmoothing() bool {
	return s.remaining > 0
}

func (s *Linear) sync() {
	t := s.Target()
	if t == s.target {
		return
	}
	s.target = t
	if s.rampLen <= 0 {
		s.current = t
		s.remaining = 0
		s.step = 0
		return
	}
	s.remaining = s.rampLen
	s.step = (t - s.current) / float64(s.rampLen)
}
