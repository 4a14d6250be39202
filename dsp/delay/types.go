package delay

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-irfx/dsp/core"
)

// DefaultTempo is used whenever the host reports no usable tempo.
const DefaultTempo = 120.0

// Mode selects the echo character.
type Mode int

const (
	// Digital repeats the signal unmodified.
	Digital Mode = iota
	// Tape low-passes and saturates the repeats.
	Tape
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Digital:
		return "Digital"
	case Tape:
		return "Tape"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{Digital, Tape} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return Digital, fmt.Errorf("delay: unknown mode %q", s)
}

// Topology selects how channels feed the ring and the outputs.
type Topology int

const (
	// Mono writes the channel average to both rings and sends the left
	// echo to every output.
	Mono Topology = iota
	// PingPong cross-routes feedback between channels; the left output
	// gets the inverted right echo.
	PingPong
	// Stereo delays each channel independently.
	Stereo
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case Mono:
		return "Mono"
	case PingPong:
		return "PingPong"
	case Stereo:
		return "Stereo"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// ParseTopology parses a topology name, case-insensitively.
func ParseTopology(s string) (Topology, error) {
	for _, t := range []Topology{Mono, PingPong, Stereo} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return Mono, fmt.Errorf("delay: unknown topology %q", s)
}

// Subdivision is a tempo-synced note length.
type Subdivision int

const (
	Whole Subdivision = iota
	Half
	Quarter
	Eighth
	Sixteenth
	DottedQuarter
	TripletQuarter
	ThirtySecond

	NumSubdivisions = int(ThirtySecond) + 1
)

var subdivisions = [NumSubdivisions]struct {
	name  string
	beats float64
}{
	Whole:          {"1/1", 4},
	Half:           {"1/2", 2},
	Quarter:        {"1/4", 1},
	Eighth:         {"1/8", 0.5},
	Sixteenth:      {"1/16", 0.25},
	DottedQuarter:  {"1/4 Dotted", 1.5},
	TripletQuarter: {"1/4 Triplet", 2.0 / 3.0},
	ThirtySecond:   {"1/32", 0.125},
}

// Valid reports whether s is a known subdivision.
func (s Subdivision) Valid() bool {
	return s >= 0 && int(s) < NumSubdivisions
}

// Beats returns the length in quarter-note beats. Unknown values count as
// a quarter note.
func (s Subdivision) Beats() float64 {
	if !s.Valid() {
		return 1
	}
	return subdivisions[s].beats
}

// String returns the musical label, e.g. "1/4 Dotted".
func (s Subdivision) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Subdivision(%d)", int(s))
	}
	return subdivisions[s].name
}

// ParseSubdivision parses a musical label such as "1/8" or "1/4 triplet".
func ParseSubdivision(label string) (Subdivision, error) {
	for i, sd := range subdivisions {
		if strings.EqualFold(strings.TrimSpace(label), sd.name) {
			return Subdivision(i), nil
		}
	}
	return Quarter, fmt.Errorf("delay: unknown subdivision %q", label)
}

// EffectiveTempo returns bpm, or DefaultTempo when bpm is not a positive
// finite number.
func EffectiveTempo(bpm float64) float64 {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return DefaultTempo
	}
	return bpm
}

// SyncedDelaySamples returns the length of sub at bpm, rounded to whole
// samples. Invalid tempos fall back to DefaultTempo.
func SyncedDelaySamples(bpm float64, sub Subdivision, sampleRate float64) int {
	secondsPerBeat := 60 / EffectiveTempo(bpm)
	return int(math.Round(secondsPerBeat * sub.Beats() * sampleRate))
}

// MillisecondsToSamples converts a delay time to whole samples.
func MillisecondsToSamples(ms, sampleRate float64) int {
	ms = core.Sanitize(ms, 0)
	return int(math.Round(ms / 1000 * sampleRate))
}

// ReadIndex returns the ring position delaySamples behind writeCursor.
// The result is always in [0, capacity) for capacity > 0, whatever the
// sign or size of the inputs.
func ReadIndex(writeCursor, delaySamples, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	r := (writeCursor - delaySamples) % capacity
	if r < 0 {
		r += capacity
	}
	return r
}
