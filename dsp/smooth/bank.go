package smooth

// Bank holds a fixed set of smoothers indexed by parameter slot.
type Bank struct {
	items []Linear
}

// NewBank returns a bank of n smoothers, each resting at zero.
func NewBank(n int) *Bank {
	return &Bank{items: make([]Linear, max(n, 0))}
}

// Len returns the number of smoothers.
func (b *Bank) Len() int { return len(b.items) }

// At returns the smoother in slot i.
func (b *Bank) At(i int) *Linear { return &b.items[i] }

// ResetAll reconfigures every smoother for sampleRate and rampSeconds.
func (b *Bank) ResetAll(sampleRate, rampSeconds float64) {
	for i := range b.items {
		b.items[i].Reset(sampleRate, rampSeconds)
	}
}

// AdvanceAll advances every smoother by n samples.
func (b *Bank) AdvanceAll(n int) {
	for i := range b.items {
		b.items[i].Advance(n)
	}
}
