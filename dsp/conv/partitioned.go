package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// DefaultPartitionSize is the partition length used when none is given.
const DefaultPartitionSize = 128

// PartitionedOption mutates partitioned convolver configuration.
type PartitionedOption func(*partitionedConfig) error

type partitionedConfig struct {
	partitionSize int
}

// WithPartitionSize sets the partition length. It must be a power of two.
func WithPartitionSize(n int) PartitionedOption {
	return func(cfg *partitionedConfig) error {
		if !isPowerOf2(n) || n < 4 {
			return fmt.Errorf("%w: %d", ErrInvalidPartitionSize, n)
		}
		cfg.partitionSize = n
		return nil
	}
}

// Partitioned is a zero-latency streaming convolver.
//
// The kernel is cut into partitions of length P. Partition 0 is applied in
// the time domain on every sample. Partitions 1..K-1 are applied with
// overlap-save over a window of 2P samples and a frequency-domain delay line
// holding the last K-1 input spectra. Because partition j only contributes
// after a delay of j*P samples, the tail for the next block can be computed
// as soon as the current block is complete.
type Partitioned struct {
	kernelLen int
	part      int
	fftSize   int

	head []float64 // reversed first partition

	plan     *algofft.Plan[complex128]
	spectra  [][]complex128 // partitions 1..K-1
	fdl      [][]complex128 // ring of past input spectra
	fdlPos   int
	scratch  []complex128
	acc      []complex128
	window   []float64 // previous block followed by current block
	tail     []float64 // tail contribution for the current block
	blockPos int
}

// NewPartitioned builds a convolver for kernel. The kernel is copied.
func NewPartitioned(kernel []float64, opts ...PartitionedOption) (*Partitioned, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyImpulseResponse
	}

	cfg := partitionedConfig{partitionSize: DefaultPartitionSize}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	p := cfg.partitionSize
	headLen := min(p, len(kernel))
	numParts := (len(kernel) + p - 1) / p

	c := &Partitioned{
		kernelLen: len(kernel),
		part:      p,
		fftSize:   2 * p,
		head:      make([]float64, headLen),
		window:    make([]float64, 2*p),
		tail:      make([]float64, p),
	}

	for i := range headLen {
		c.head[i] = kernel[headLen-1-i]
	}

	if numParts < 2 {
		return c, nil
	}

	plan, err := algofft.NewPlan64(c.fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}
	c.plan = plan
	c.scratch = make([]complex128, c.fftSize)
	c.acc = make([]complex128, c.fftSize)

	c.spectra = make([][]complex128, numParts-1)
	c.fdl = make([][]complex128, numParts-1)
	for j := 1; j < numParts; j++ {
		clear(c.scratch)
		seg := kernel[j*p : min((j+1)*p, len(kernel))]
		for i, v := range seg {
			c.scratch[i] = complex(v, 0)
		}

		spec := make([]complex128, c.fftSize)
		if err := plan.Forward(spec, c.scratch); err != nil {
			return nil, fmt.Errorf("conv: failed to compute partition %d spectrum: %w", j, err)
		}
		c.spectra[j-1] = spec
		c.fdl[j-1] = make([]complex128, c.fftSize)
	}

	return c, nil
}

// KernelLen returns the number of taps.
func (c *Partitioned) KernelLen() int { return c.kernelLen }

// PartitionSize returns the partition length P.
func (c *Partitioned) PartitionSize() int { return c.part }

// Latency is always zero; output sample n depends on input up to sample n.
func (c *Partitioned) Latency() int { return 0 }

// Reset clears all input history and pending tail output.
func (c *Partitioned) Reset() {
	clear(c.window)
	clear(c.tail)
	for _, s := range c.fdl {
		clear(s)
	}
	c.fdlPos = 0
	c.blockPos = 0
}

// ProcessSample convolves one input sample and returns one output sample.
func (c *Partitioned) ProcessSample(x float64) float64 {
	p := c.part
	idx := p + c.blockPos
	c.window[idx] = x

	h := len(c.head)
	y := vecmath.DotProduct(c.window[idx-h+1:idx+1], c.head) + c.tail[c.blockPos]

	c.blockPos++
	if c.blockPos == p {
		c.advanceBlock()
	}

	return y
}

// ProcessBlock convolves buf in place. Any length is accepted; block
// boundaries do not affect the result.
func (c *Partitioned) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x)
	}
}

// advanceBlock runs once per completed block of P samples: it transforms
// the current window into the delay line, computes the tail for the next
// block and slides the window.
func (c *Partitioned) advanceBlock() {
	p := c.part
	c.blockPos = 0

	if c.plan != nil {
		for i, v := range c.window {
			c.scratch[i] = complex(v, 0)
		}

		// Newest spectrum replaces the oldest slot.
		c.fdlPos--
		if c.fdlPos < 0 {
			c.fdlPos = len(c.fdl) - 1
		}
		_ = c.plan.Forward(c.fdl[c.fdlPos], c.scratch)

		clear(c.acc)
		n := len(c.fdl)
		for j, spec := range c.spectra {
			x := c.fdl[(c.fdlPos+j)%n]
			for k := range c.acc {
				c.acc[k] += x[k] * spec[k]
			}
		}

		_ = c.plan.Inverse(c.scratch, c.acc)
		for i := range c.tail {
			c.tail[i] = real(c.scratch[p+i])
		}
	}

	copy(c.window[:p], c.window[p:])
}
