package biquad

import (
	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/core"
)

type state struct{ s1, s2 float64 }

// Cascade runs the same sections in series over every channel, each
// channel with its own filter memory. Sizes are fixed at construction so
// processing and coefficient updates never allocate.
type Cascade struct {
	coeffs []Coefficients
	state  [][]state
}

// NewCascade returns channels x sections of pass-through filters.
func NewCascade(channels, sections int) *Cascade {
	channels, sections = max(channels, 0), max(sections, 0)
	c := &Cascade{
		coeffs: make([]Coefficients, sections),
		state:  make([][]state, channels),
	}
	for i := range c.coeffs {
		c.coeffs[i] = Identity()
	}
	for ch := range c.state {
		c.state[ch] = make([]state, sections)
	}
	return c
}

// Channels returns the number of channels with filter memory.
func (c *Cascade) Channels() int { return len(c.state) }

// Sections returns the number of sections per channel.
func (c *Cascade) Sections() int { return len(c.coeffs) }

// Set replaces section i on all channels. Filter memory is kept so a
// control change does not click.
func (c *Cascade) Set(i int, k Coefficients) { c.coeffs[i] = k }

// Section returns the coefficients of section i.
func (c *Cascade) Section(i int) Coefficients { return c.coeffs[i] }

// Reset clears the memory of every channel.
func (c *Cascade) Reset() {
	for _, st := range c.state {
		clear(st)
	}
}

// MagnitudeDB returns the combined gain of all sections at freqHz.
func (c *Cascade) MagnitudeDB(freqHz, sampleRate float64) float64 {
	var db float64
	for _, k := range c.coeffs {
		db += k.MagnitudeDB(freqHz, sampleRate)
	}
	return db
}

// Tick filters one sample of channel ch through every section.
func (c *Cascade) Tick(ch int, x float64) float64 {
	st := c.state[ch]
	for i := range c.coeffs {
		k := &c.coeffs[i]
		s := &st[i]
		y := k.B0*x + s.s1
		s.s1 = k.B1*x - k.A1*y + s.s2
		s.s2 = k.B2*x - k.A2*y
		x = y
	}
	return x
}

// ProcessChannel filters samples of channel ch in place, one section at a
// time.
func (c *Cascade) ProcessChannel(ch int, samples []float64) {
	st := c.state[ch]
	for i, k := range c.coeffs {
		s1, s2 := st[i].s1, st[i].s2
		for n, x := range samples {
			y := k.B0*x + s1
			s1 = k.B1*x - k.A1*y + s2
			s2 = k.B2*x - k.A2*y
			samples[n] = y
		}
		st[i] = state{core.FlushDenormals(s1), core.FlushDenormals(s2)}
	}
}

// Process filters buf in place. Channels without filter memory pass
// through.
func (c *Cascade) Process(buf *buffer.Buffer) {
	if buf == nil {
		return
	}
	for ch := range min(buf.Channels(), len(c.state)) {
		c.ProcessChannel(ch, buf.Channel(ch))
	}
}
