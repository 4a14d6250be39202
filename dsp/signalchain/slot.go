package signalchain

import (
	"sync/atomic"

	"github.com/cwbudde/algo-irfx/dsp/ir"
)

// NumSlots is the number of impulse-response paths.
const NumSlots = 2

type swap struct {
	conv *ir.Convolver
}

// IRSlot hands a convolver from a loader goroutine to the audio goroutine.
// Load and Unload only publish a pending swap; the audio goroutine takes it
// at the next block boundary, so a block never sees a partial change.
type IRSlot struct {
	pending atomic.Pointer[swap]
	loaded  atomic.Bool
	muted   atomic.Bool

	// Owned by the audio goroutine.
	active *ir.Convolver
}

// Load publishes c as the slot's next convolver. A nil c unloads.
func (s *IRSlot) Load(c *ir.Convolver) {
	s.pending.Store(&swap{conv: c})
	s.loaded.Store(c != nil)
}

// Unload publishes an empty slot.
func (s *IRSlot) Unload() { s.Load(nil) }

// Loaded reports whether a convolver has been loaded and not unloaded. It
// may be true before the audio goroutine has picked up the swap.
func (s *IRSlot) Loaded() bool { return s.loaded.Load() }

// Pending reports whether a swap is waiting for the audio goroutine.
func (s *IRSlot) Pending() bool { return s.pending.Load() != nil }

// SetMuted mutes or unmutes the path. A muted path is skipped entirely.
func (s *IRSlot) SetMuted(muted bool) { s.muted.Store(muted) }

// Muted reports whether the path is muted.
func (s *IRSlot) Muted() bool { return s.muted.Load() }

// acquire takes a pending swap, if any, and returns the convolver to use
// for this block. Audio goroutine only.
func (s *IRSlot) acquire() *ir.Convolver {
	if sw := s.pending.Swap(nil); sw != nil {
		s.active = sw.conv
	}
	return s.active
}

// install replaces the active convolver directly. It must not race with
// the audio goroutine; Prepare uses it.
func (s *IRSlot) install(c *ir.Convolver) {
	s.pending.Store(nil)
	s.active = c
	s.loaded.Store(c != nil)
}
