package saturation

import (
	"fmt"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/filter/biquad"
)

const (
	// MaxDrive is the top of the drive control range.
	MaxDrive = 12.0

	minDriveGain = 1.0
	maxDriveGain = 10.0

	defaultPreShelfHz = 150.0
	defaultPreShelfDB = 2.0
	defaultPostCutHz  = 15000.0
)

// Option configures an Engine at construction.
type Option func(*Engine)

// WithCharacter sets the initial character.
func WithCharacter(c Character) Option {
	return func(e *Engine) {
		e.SetCharacter(c)
	}
}

// WithDrive sets the initial drive in [0, MaxDrive].
func WithDrive(drive float64) Option {
	return func(e *Engine) {
		e.SetDrive(drive)
	}
}

// WithMix sets the initial wet fraction in [0, 1].
func WithMix(mix float64) Option {
	return func(e *Engine) {
		e.SetMix(mix)
	}
}

// WithPreShelf overrides the pre-emphasis low shelf.
func WithPreShelf(freqHz, gainDB float64) Option {
	return func(e *Engine) {
		if freqHz > 0 {
			e.preHz = freqHz
		}
		e.preDB = core.Sanitize(gainDB, defaultPreShelfDB)
	}
}

// WithPostCutoff overrides the post low-pass corner.
func WithPostCutoff(freqHz float64) Option {
	return func(e *Engine) {
		if freqHz > 0 {
			e.postHz = freqHz
		}
	}
}

// Engine is a multichannel saturation stage. Filter state is held per
// channel and sized only by Prepare.
type Engine struct {
	sampleRate float64
	prepared   bool
	active     bool

	drive     float64
	mix       float64
	character Character

	preHz, preDB, postHz float64

	pre, post *biquad.Cascade
}

// New returns an engine with the given options. Call Prepare before Process.
func New(opts ...Option) *Engine {
	e := &Engine{
		character: TypeA,
		mix:       1,
		preHz:     defaultPreShelfHz,
		preDB:     defaultPreShelfDB,
		postHz:    defaultPostCutHz,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Prepare sizes the per-channel filters and derives their coefficients for
// sampleRate. It is the only method that allocates.
func (e *Engine) Prepare(sampleRate float64, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("saturation: %w: %v", core.ErrInvalidSampleRate, sampleRate)
	}
	if channels < 1 || channels > core.MaxChannels {
		return fmt.Errorf("saturation: %w: %d", core.ErrInvalidChannels, channels)
	}

	e.sampleRate = sampleRate
	if e.pre == nil || e.pre.Channels() != channels {
		e.pre = biquad.NewCascade(channels, 1)
		e.post = biquad.NewCascade(channels, 1)
	}
	e.pre.Set(0, biquad.LowShelf(e.preHz, e.preDB, biquad.ButterworthQ, sampleRate))
	e.post.Set(0, biquad.Lowpass(e.postHz, biquad.ButterworthQ, sampleRate))

	e.prepared = true
	e.Reset()
	return nil
}

// Reset clears filter state.
func (e *Engine) Reset() {
	if e.pre != nil {
		e.pre.Reset()
		e.post.Reset()
	}
}

// Channels returns the prepared channel count.
func (e *Engine) Channels() int {
	if e.pre == nil {
		return 0
	}
	return e.pre.Channels()
}

// SetDrive sets the drive amount, clamped to [0, MaxDrive].
func (e *Engine) SetDrive(drive float64) {
	e.drive = core.Clamp(drive, 0, MaxDrive)
}

// Drive returns the drive amount.
func (e *Engine) Drive() float64 { return e.drive }

// DriveGain returns the input multiplier the current drive maps to.
func (e *Engine) DriveGain() float64 {
	return core.MapRange(e.drive, 0, MaxDrive, minDriveGain, maxDriveGain)
}

// SetMix sets the wet fraction, clamped to [0, 1].
func (e *Engine) SetMix(mix float64) {
	e.mix = core.Clamp(mix, 0, 1)
}

// Mix returns the wet fraction.
func (e *Engine) Mix() float64 { return e.mix }

// SetCharacter selects the waveshaping curve. Unknown values are ignored.
func (e *Engine) SetCharacter(c Character) {
	if c.Valid() {
		e.character = c
	}
}

// Character returns the selected curve.
func (e *Engine) Character() Character { return e.character }

// Bypassed reports whether the current settings leave the signal untouched.
func (e *Engine) Bypassed() bool {
	return e.drive <= 0 || e.mix <= 0
}

// ProcessSample runs the unfiltered shaper path on one sample: drive,
// curve, attenuation and dry/wet mix. It keeps no state.
func (e *Engine) ProcessSample(x float64) float64 {
	if e.Bypassed() {
		return x
	}
	wet := e.character.Shape(x*e.DriveGain()) * e.character.Attenuation()
	return x*(1-e.mix) + wet*e.mix
}

// Process saturates buf in place. Channels beyond the prepared count pass
// through unchanged. Nothing happens before Prepare or while Bypassed.
func (e *Engine) Process(buf *buffer.Buffer) {
	if !e.prepared || buf == nil {
		return
	}
	if e.Bypassed() {
		e.active = false
		return
	}
	if !e.active {
		// Filter memory restarts from silence after a bypassed stretch.
		e.Reset()
		e.active = true
	}

	c := e.character
	gain := e.DriveGain()
	att := c.Attenuation()
	wetMix := e.mix
	dryMix := 1 - wetMix

	for ch := range min(buf.Channels(), e.pre.Channels()) {
		samples := buf.Channel(ch)
		for i, x := range samples {
			// Dry and wet both take the pre-shelved sample.
			y := e.pre.Tick(ch, x)
			wet := c.Shape(y*gain) * att
			samples[i] = core.FlushDenormals(e.post.Tick(ch, y*dryMix+wet*wetMix))
		}
	}
}
