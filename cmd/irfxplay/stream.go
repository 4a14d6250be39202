package main

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/signalchain"
)

const bytesPerSample = 4

// source fills planar input frames for the chain.
type source interface {
	fill(buf *buffer.Buffer, frames int)
}

// stream pulls audio through the processor for the output device. It is
// read from the device goroutine only; the meter reads the atomics.
type stream struct {
	proc     *signalchain.Processor
	src      source
	block    int
	channels int

	buf     *buffer.Buffer
	samples []float32

	peak    atomic.Uint64
	clipped atomic.Bool
	frames  atomic.Int64
}

func newStream(proc *signalchain.Processor, src source, block, channels int) *stream {
	return &stream{
		proc:     proc,
		src:      src,
		block:    block,
		channels: channels,
		buf:      buffer.New(channels, block),
		samples:  make([]float32, block*channels),
	}
}

// Read renders len(p) bytes of little-endian float32 frames. Partial
// frames at the end of p are zero filled.
func (s *stream) Read(p []byte) (int, error) {
	frameBytes := bytesPerSample * s.channels
	total := len(p) / frameBytes
	out := p

	for done := 0; done < total; {
		n := min(s.block, total-done)
		s.src.fill(s.buf, n)
		s.proc.Process(s.buf)
		if s.proc.ConsumeClip() {
			s.clipped.Store(true)
		}
		s.storePeak(s.buf.Peak())

		written := s.buf.Interleave(s.samples, s.channels)
		for i, v := range s.samples[:written*s.channels] {
			binary.LittleEndian.PutUint32(out[i*bytesPerSample:], math.Float32bits(v))
		}
		out = out[n*frameBytes:]
		done += n
	}
	clear(out)

	s.frames.Add(int64(total))
	return len(p), nil
}

func (s *stream) storePeak(v float64) {
	for {
		old := s.peak.Load()
		if v <= math.Float64frombits(old) || s.peak.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}

// takePeak returns the highest peak since the last call and whether the
// output clipped in that time.
func (s *stream) takePeak() (float64, bool) {
	return math.Float64frombits(s.peak.Swap(0)), s.clipped.Swap(false)
}
