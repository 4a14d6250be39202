package tonestack

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/filter/biquad"
)

// Fixed band layout.
const (
	LowShelfHz  = 110.0
	LowShelfQ   = 0.707
	MidQ        = 1.0
	HighShelfHz = 4500.0
	HighShelfQ  = 0.707

	MaxGainDB    = 12.0
	MinMidHz     = 250.0
	MaxMidHz     = 5000.0
	DefaultMidHz = 550.0
)

const (
	bandLow = iota
	bandMid
	bandHigh
	numBands
)

// Settings are the user-facing tone stack controls.
type Settings struct {
	LowDB  float64
	MidDB  float64
	MidHz  float64
	HighDB float64
}

// DefaultSettings returns a flat response with the mid band at DefaultMidHz.
func DefaultSettings() Settings {
	return Settings{MidHz: DefaultMidHz}
}

// clamped bounds every field. A NaN mid frequency falls back to
// DefaultMidHz; infinities go to the nearer bound.
func (s Settings) clamped() Settings {
	midHz := s.MidHz
	if math.IsNaN(midHz) {
		midHz = DefaultMidHz
	}
	return Settings{
		LowDB:  core.Clamp(s.LowDB, -MaxGainDB, MaxGainDB),
		MidDB:  core.Clamp(s.MidDB, -MaxGainDB, MaxGainDB),
		MidHz:  core.Clamp(midHz, MinMidHz, MaxMidHz),
		HighDB: core.Clamp(s.HighDB, -MaxGainDB, MaxGainDB),
	}
}

// ToneStack is a per-channel low-shelf, mid-peak, high-shelf cascade.
type ToneStack struct {
	sampleRate float64
	prepared   bool

	settings Settings
	bands    *biquad.Cascade
}

// New returns a flat tone stack. Call Prepare before Process.
func New() *ToneStack {
	return &ToneStack{settings: DefaultSettings()}
}

// Prepare sizes the per-channel filters for channels and derives
// coefficients for sampleRate.
func (t *ToneStack) Prepare(sampleRate float64, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("tonestack: %w: %v", core.ErrInvalidSampleRate, sampleRate)
	}
	if channels < 1 || channels > core.MaxChannels {
		return fmt.Errorf("tonestack: %w: %d", core.ErrInvalidChannels, channels)
	}

	t.sampleRate = sampleRate
	if t.bands == nil || t.bands.Channels() != channels {
		t.bands = biquad.NewCascade(channels, numBands)
	}

	t.redesign()
	t.Reset()
	t.prepared = true

	return nil
}

// Reset clears filter state on all channels.
func (t *ToneStack) Reset() {
	if t.bands != nil {
		t.bands.Reset()
	}
}

// Settings returns the current, clamped controls.
func (t *ToneStack) Settings() Settings { return t.settings }

// SetSettings updates the controls. Out-of-range values are clamped.
// Coefficients are recomputed only when a value changed.
func (t *ToneStack) SetSettings(s Settings) {
	s = s.clamped()
	if s == t.settings {
		return
	}

	t.settings = s
	if t.bands != nil {
		t.redesign()
	}
}

// MagnitudeDB returns the response of the current settings at freqHz.
func (t *ToneStack) MagnitudeDB(freqHz float64) float64 {
	if t.bands == nil {
		return 0
	}
	return t.bands.MagnitudeDB(freqHz, t.sampleRate)
}

// Process filters buf in place. Channels beyond the prepared count pass
// through. Nothing happens before Prepare.
func (t *ToneStack) Process(buf *buffer.Buffer) {
	if !t.prepared || buf == nil {
		return
	}

	t.bands.Process(buf)
}

func (t *ToneStack) redesign() {
	s, sr := t.settings, t.sampleRate
	t.bands.Set(bandLow, biquad.LowShelf(LowShelfHz, s.LowDB, LowShelfQ, sr))
	t.bands.Set(bandMid, biquad.Peak(s.MidHz, s.MidDB, MidQ, sr))
	t.bands.Set(bandHigh, biquad.HighShelf(HighShelfHz, s.HighDB, HighShelfQ, sr))
}
