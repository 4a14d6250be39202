package ir

import (
	"fmt"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/conv"
)

// Convolver applies a prepared impulse response to a planar buffer, one
// partitioned convolution per channel. Build it off the audio thread.
type Convolver struct {
	sampleRate float64
	frames     int
	channels   []*conv.Partitioned
}

// NewConvolver builds a convolver for resp. resp should already be prepared
// for the engine rate. Options are passed to each channel's partitioned
// convolver.
func NewConvolver(resp *ImpulseResponse, opts ...conv.PartitionedOption) (*Convolver, error) {
	if resp == nil || resp.Frames() == 0 {
		return nil, ErrEmptyImpulseResponse
	}

	frames := resp.Frames()
	c := &Convolver{
		sampleRate: resp.SampleRate,
		frames:     frames,
		channels:   make([]*conv.Partitioned, len(resp.Channels)),
	}

	for i, ch := range resp.Channels {
		p, err := conv.NewPartitioned(ch[:frames], opts...)
		if err != nil {
			return nil, fmt.Errorf("ir: channel %d: %w", i, err)
		}
		c.channels[i] = p
	}

	return c, nil
}

// SampleRate returns the rate the response was prepared for.
func (c *Convolver) SampleRate() float64 { return c.sampleRate }

// Frames returns the response length in samples.
func (c *Convolver) Frames() int { return c.frames }

// Channels returns the number of response channels.
func (c *Convolver) Channels() int { return len(c.channels) }

// Latency is zero.
func (c *Convolver) Latency() int { return 0 }

// Reset clears convolution history on every channel.
func (c *Convolver) Reset() {
	for _, p := range c.channels {
		p.Reset()
	}
}

// Process convolves buf in place. Buffer channel i uses response channel i.
// Buffer channels beyond the response's channel count are left unchanged.
func (c *Convolver) Process(buf *buffer.Buffer) {
	for ch := range min(buf.Channels(), len(c.channels)) {
		c.channels[ch].ProcessBlock(buf.Channel(ch))
	}
}
