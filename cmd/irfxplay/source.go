package main

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/core"
)

var errEmptyLoop = errors.New("loop source has no frames")

// loop repeats a decoded file forever.
type loop struct {
	channels [][]float64
	pos      int
}

func newLoop(channels [][]float64) (*loop, error) {
	channels = channels[:min(len(channels), core.MaxChannels)]
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil, errEmptyLoop
	}
	return &loop{channels: channels}, nil
}

func (l *loop) fill(buf *buffer.Buffer, frames int) {
	buf.SetSize(len(l.channels), frames)
	length := len(l.channels[0])

	for done := 0; done < buf.Frames(); {
		n := min(buf.Frames()-done, length-l.pos)
		for ch := range buf.Channels() {
			copy(buf.Channel(ch)[done:done+n], l.channels[ch][l.pos:l.pos+n])
		}
		done += n
		l.pos += n
		if l.pos == length {
			l.pos = 0
		}
	}
}

// tone is a band-limited-enough sawtooth plucked once per period, close to
// a muted guitar note when run through a cabinet IR.
type tone struct {
	phase, step float64
	amp         float64
	env, decay  float64
	retrigger   int
	count       int
}

func newTone(freqHz, sampleRate, amp float64) *tone {
	return &tone{
		step:      freqHz / sampleRate,
		amp:       amp,
		decay:     math.Exp(-1 / (0.25 * sampleRate)),
		retrigger: int(sampleRate / 2),
	}
}

func (t *tone) fill(buf *buffer.Buffer, frames int) {
	buf.SetSize(1, frames)
	out := buf.Channel(0)
	for i := range out {
		if t.count == 0 {
			t.env = 1
		}
		t.count++
		if t.count >= t.retrigger {
			t.count = 0
		}

		out[i] = (2*t.phase - 1) * t.amp * t.env
		t.env *= t.decay
		t.phase += t.step
		if t.phase >= 1 {
			t.phase--
		}
	}
}
