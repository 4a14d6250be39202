package signalchain

import (
	"math"
	"sync/atomic"
)

// ParamSource supplies the authoritative control values. The processor
// reads every parameter once per block on the audio goroutine, so Value
// must not block.
type ParamSource interface {
	Value(id ParamID) float64
}

// Store is a lock-free ParamSource. Any goroutine may Set; the audio
// goroutine reads with Value.
type Store struct {
	values [NumParams]atomic.Uint64
}

// NewStore returns a store holding every parameter's default.
func NewStore() *Store {
	s := &Store{}
	s.ResetDefaults()
	return s
}

// ResetDefaults restores every parameter to its default.
func (s *Store) ResetDefaults() {
	for i := range s.values {
		s.values[i].Store(math.Float64bits(specs[i].Default))
	}
}

// Value returns the current value of id, or 0 for unknown IDs.
func (s *Store) Value(id ParamID) float64 {
	if !id.Valid() {
		return 0
	}
	return math.Float64frombits(s.values[id].Load())
}

// Set clamps v into the parameter's domain and publishes it. Unknown IDs
// are ignored.
func (s *Store) Set(id ParamID, v float64) {
	if !id.Valid() {
		return
	}
	s.values[id].Store(math.Float64bits(specs[id].Clamp(v)))
}

// SetBool is Set for boolean parameters.
func (s *Store) SetBool(id ParamID, on bool) {
	v := 0.0
	if on {
		v = 1
	}
	s.Set(id, v)
}

// Bool reports whether a boolean parameter is on.
func (s *Store) Bool(id ParamID) bool { return s.Value(id) >= 0.5 }

// Choice returns a choice parameter's index.
func (s *Store) Choice(id ParamID) int { return int(s.Value(id)) }

// SetText parses text for the named parameter and publishes it.
func (s *Store) SetText(name, text string) error {
	id, err := Lookup(name)
	if err != nil {
		return err
	}
	v, err := specs[id].Parse(text)
	if err != nil {
		return err
	}
	s.Set(id, v)
	return nil
}

// Snapshot copies the current values of every parameter.
func (s *Store) Snapshot() [NumParams]float64 {
	var out [NumParams]float64
	for i := range out {
		out[i] = math.Float64frombits(s.values[i].Load())
	}
	return out
}
