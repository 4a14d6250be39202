package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/core"
)

const (
	defaultCapacitySeconds = 2.0
	defaultTimeMs          = 375.0
	defaultFeedback        = 0.3

	// MaxFeedback keeps the recirculating loop strictly below unity gain.
	MaxFeedback = 0.99

	// MinTimeMs and MaxTimeMs bound the free-running delay time control.
	MinTimeMs = 1.0
	MaxTimeMs = 2000.0

	tapeSmoothing = 0.2
	tapeDrive     = 1.5
	pingPongGain  = 0.707

	tailFloor      = 1e-3 // -60 dB
	maxTailSeconds = 60.0
)

// Option configures an Engine at construction.
type Option func(*Engine)

// WithCapacitySeconds sets the ring length used by Prepare.
func WithCapacitySeconds(seconds float64) Option {
	return func(e *Engine) {
		if seconds > 0 && !math.IsInf(seconds, 0) {
			e.capacitySeconds = seconds
		}
	}
}

// WithMode sets the initial character.
func WithMode(m Mode) Option {
	return func(e *Engine) { e.SetMode(m) }
}

// WithTopology sets the initial routing.
func WithTopology(t Topology) Option {
	return func(e *Engine) { e.SetTopology(t) }
}

// Engine is a stereo feedback delay. All methods are meant for the audio
// goroutine; control values reach it through a smoother or parameter store.
type Engine struct {
	sampleRate      float64
	capacitySeconds float64
	prepared        bool

	lines    [2]*Line
	capacity int
	tapeLP   [2]float64

	timeMs   float64
	feedback float64
	mix      float64
	mode     Mode
	topology Topology
	synced   bool
	tempo    float64
	sub      Subdivision

	delaySamples int
}

// New returns an engine with default settings. Call Prepare before Process.
func New(opts ...Option) *Engine {
	e := &Engine{
		capacitySeconds: defaultCapacitySeconds,
		timeMs:          defaultTimeMs,
		feedback:        defaultFeedback,
		tempo:           DefaultTempo,
		sub:             Quarter,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Prepare allocates and clears the delay lines for sampleRate. There are always
// two lines; channels only validates the host layout.
func (e *Engine) Prepare(sampleRate float64, channels int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("delay: %w: %v", core.ErrInvalidSampleRate, sampleRate)
	}
	if channels < 1 || channels > core.MaxChannels {
		return fmt.Errorf("delay: %w: %d", core.ErrInvalidChannels, channels)
	}

	capacity := int(sampleRate * e.capacitySeconds)
	if capacity < 2 {
		capacity = 2
	}
	if capacity != e.capacity {
		for ch := range e.lines {
			e.lines[ch] = NewLine(capacity)
		}
		e.capacity = capacity
	}

	e.sampleRate = sampleRate
	e.prepared = true
	e.Reset()
	e.updateDelaySamples()
	return nil
}

// Reset clears both lines, their write cursors and the tape filter memory.
func (e *Engine) Reset() {
	for _, l := range e.lines {
		if l != nil {
			l.Reset()
		}
	}
	e.tapeLP = [2]float64{}
}

// SetTimeMs sets the free-running delay time.
func (e *Engine) SetTimeMs(ms float64) {
	e.timeMs = core.Clamp(ms, MinTimeMs, MaxTimeMs)
}

// TimeMs returns the free-running delay time.
func (e *Engine) TimeMs() float64 { return e.timeMs }

// SetFeedback sets the feedback gain, clamped to [0, MaxFeedback].
func (e *Engine) SetFeedback(fb float64) {
	e.feedback = core.Clamp(fb, 0, MaxFeedback)
}

// Feedback returns the feedback gain.
func (e *Engine) Feedback() float64 { return e.feedback }

// SetMix sets the wet fraction, clamped to [0, 1].
func (e *Engine) SetMix(mix float64) {
	e.mix = core.Clamp(mix, 0, 1)
}

// Mix returns the wet fraction.
func (e *Engine) Mix() float64 { return e.mix }

// SetMode selects the echo character. Unknown values are ignored.
func (e *Engine) SetMode(m Mode) {
	if m == Digital || m == Tape {
		e.mode = m
	}
}

// Mode returns the echo character.
func (e *Engine) Mode() Mode { return e.mode }

// SetTopology selects the routing. Unknown values are ignored.
func (e *Engine) SetTopology(t Topology) {
	if t >= Mono && t <= Stereo {
		e.topology = t
	}
}

// Topology returns the routing.
func (e *Engine) Topology() Topology { return e.topology }

// SetSyncEnabled switches between tempo-synced and free-running time.
func (e *Engine) SetSyncEnabled(on bool) { e.synced = on }

// SyncEnabled reports whether the delay follows tempo.
func (e *Engine) SyncEnabled() bool { return e.synced }

// SetTempo records the host tempo in BPM. Unusable values are kept and
// replaced by DefaultTempo when the length is derived.
func (e *Engine) SetTempo(bpm float64) { e.tempo = bpm }

// SetSubdivision selects the synced note length. Unknown values are ignored.
func (e *Engine) SetSubdivision(s Subdivision) {
	if s.Valid() {
		e.sub = s
	}
}

// Subdivision returns the synced note length.
func (e *Engine) Subdivision() Subdivision { return e.sub }

// Capacity returns the ring length in samples, or 0 before Prepare.
func (e *Engine) Capacity() int { return e.capacity }

// WriteCursor returns the next ring position to be written.
func (e *Engine) WriteCursor() int {
	if e.lines[0] == nil {
		return 0
	}
	return e.lines[0].WriteCursor()
}

// DelaySamples returns the delay length derived from the current settings.
func (e *Engine) DelaySamples() int {
	e.updateDelaySamples()
	return e.delaySamples
}

// TailSeconds estimates how long the echoes stay above -60 dB after the
// input stops.
func (e *Engine) TailSeconds() float64 {
	if !e.prepared || e.mix <= 0 {
		return 0
	}
	delaySec := float64(e.DelaySamples()) / e.sampleRate
	if e.feedback <= 0 {
		return delaySec
	}
	repeats := math.Ceil(math.Log(tailFloor) / math.Log(e.feedback))
	return math.Min(delaySec*(1+repeats), maxTailSeconds)
}

func (e *Engine) updateDelaySamples() {
	if !e.prepared {
		return
	}
	var n int
	if e.synced {
		n = SyncedDelaySamples(e.tempo, e.sub, e.sampleRate)
	} else {
		n = MillisecondsToSamples(e.timeMs, e.sampleRate)
	}
	e.delaySamples = min(max(n, 1), e.capacity-1)
}

// Process runs the delay over buf in place. A mono buffer always uses the
// Mono topology. Nothing happens before Prepare.
func (e *Engine) Process(buf *buffer.Buffer) {
	if !e.prepared || buf == nil || buf.Channels() == 0 || buf.Frames() == 0 {
		return
	}
	e.updateDelaySamples()

	topology := e.topology
	if buf.Channels() < 2 {
		topology = Mono
	}

	switch topology {
	case PingPong:
		e.processPingPong(buf.Channel(0), buf.Channel(1))
	case Stereo:
		e.processStereo(buf.Channel(0), buf.Channel(1))
	default:
		var right []float64
		if buf.Channels() > 1 {
			right = buf.Channel(1)
		}
		e.processMono(buf.Channel(0), right)
	}
}

// readDelayed reads both lines at the current delay and applies the tape
// filter and saturation when enabled.
func (e *Engine) readDelayed() (float64, float64) {
	dl, dr := e.lines[0].Read(e.delaySamples), e.lines[1].Read(e.delaySamples)
	if e.mode != Tape {
		return dl, dr
	}
	e.tapeLP[0] = core.FlushDenormals((1-tapeSmoothing)*e.tapeLP[0] + tapeSmoothing*dl)
	e.tapeLP[1] = core.FlushDenormals((1-tapeSmoothing)*e.tapeLP[1] + tapeSmoothing*dr)
	return mathTanh(e.tapeLP[0] * tapeDrive), mathTanh(e.tapeLP[1] * tapeDrive)
}

func (e *Engine) feedbackSample(x float64) float64 {
	if e.mode == Tape {
		x = mathTanh(x)
	}
	return core.FlushDenormals(x)
}

func (e *Engine) processMono(left, right []float64) {
	mix, fb := e.mix, e.feedback
	dry := 1 - mix
	lineL, lineR := e.lines[0], e.lines[1]

	for i := range left {
		delayed, _ := e.readDelayed()

		in := left[i]
		if right != nil {
			in = 0.5 * (left[i] + right[i])
			right[i] = right[i]*dry + delayed*mix
		}
		left[i] = left[i]*dry + delayed*mix

		w := e.feedbackSample(in + delayed*fb)
		lineL.Write(w)
		lineR.Write(w)
	}
}

func (e *Engine) processPingPong(left, right []float64) {
	mix, fb := e.mix, e.feedback
	dry := 1 - mix
	wet := mix * pingPongGain
	lineL, lineR := e.lines[0], e.lines[1]
	n := min(len(left), len(right))

	for i := 0; i < n; i++ {
		dl, dr := e.readDelayed()

		inL, inR := left[i], right[i]
		left[i] = inL*dry - dr*wet
		right[i] = inR*dry + dl*wet

		lineL.Write(e.feedbackSample(inL + dr*fb))
		lineR.Write(e.feedbackSample(inR + dl*fb))
	}
}

func (e *Engine) processStereo(left, right []float64) {
	mix, fb := e.mix, e.feedback
	dry := 1 - mix
	lineL, lineR := e.lines[0], e.lines[1]
	n := min(len(left), len(right))

	for i := 0; i < n; i++ {
		dl, dr := e.readDelayed()

		inL, inR := left[i], right[i]
		left[i] = inL*dry + dl*mix
		right[i] = inR*dry + dr*mix

		lineL.Write(e.feedbackSample(inL + dl*fb))
		lineR.Write(e.feedbackSample(inR + dr*fb))
	}
}
