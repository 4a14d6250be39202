package signalchain

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-irfx/dsp/delay"
)

// Transport is the host's tempo query. ok is false when the host has no
// tempo; the processor then uses delay.DefaultTempo.
type Transport interface {
	Tempo() (bpm float64, ok bool)
}

// FixedTempo is a Transport with a settable tempo. The zero value reports
// no tempo.
type FixedTempo struct {
	bpm atomic.Uint64
}

// NewFixedTempo returns a transport reporting bpm.
func NewFixedTempo(bpm float64) *FixedTempo {
	t := &FixedTempo{}
	t.Set(bpm)
	return t
}

// Set changes the reported tempo. Non-positive values report no tempo.
func (t *FixedTempo) Set(bpm float64) {
	t.bpm.Store(math.Float64bits(bpm))
}

// Tempo implements Transport.
func (t *FixedTempo) Tempo() (float64, bool) {
	bpm := math.Float64frombits(t.bpm.Load())
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return 0, false
	}
	return bpm, true
}

func hostTempo(t Transport) float64 {
	if t == nil {
		return delay.DefaultTempo
	}
	bpm, ok := t.Tempo()
	if !ok {
		return delay.DefaultTempo
	}
	return delay.EffectiveTempo(bpm)
}
