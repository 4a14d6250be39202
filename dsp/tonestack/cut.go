package tonestack

import (
	"fmt"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/filter/biquad"
)

// Cut filter ranges.
const (
	MinLowCutHz      = 20.0
	MaxLowCutHz      = 1000.0
	MinHighCutHz     = 1000.0
	MaxHighCutHz     = 20000.0
	DefaultLowCutHz  = MinLowCutHz
	DefaultHighCutHz = MaxHighCutHz
)

// CutFilters is a per-channel high-pass (low cut) followed by a low-pass
// (high cut), both Butterworth.
type CutFilters struct {
	sampleRate float64
	prepared   bool

	lowHz, highHz float64
	filters       *biquad.Cascade
}

// NewCutFilters returns filters at the widest setting.
func NewCutFilters() *CutFilters {
	return &CutFilters{lowHz: DefaultLowCutHz, highHz: DefaultHighCutHz}
}

// Prepare sizes the per-channel filters.
func (f *CutFilters) Prepare(sampleRate float64, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("tonestack: %w: %v", core.ErrInvalidSampleRate, sampleRate)
	}
	if channels < 1 || channels > core.MaxChannels {
		return fmt.Errorf("tonestack: %w: %d", core.ErrInvalidChannels, channels)
	}

	f.sampleRate = sampleRate
	if f.filters == nil || f.filters.Channels() != channels {
		f.filters = biquad.NewCascade(channels, 2)
	}

	f.redesign()
	f.Reset()
	f.prepared = true

	return nil
}

// Reset clears filter state.
func (f *CutFilters) Reset() {
	if f.filters != nil {
		f.filters.Reset()
	}
}

// Cutoffs returns the current low-cut and high-cut corners.
func (f *CutFilters) Cutoffs() (lowHz, highHz float64) { return f.lowHz, f.highHz }

// SetCutoffs sets both corners, clamped to their ranges.
func (f *CutFilters) SetCutoffs(lowHz, highHz float64) {
	lowHz = core.Clamp(core.Sanitize(lowHz, DefaultLowCutHz), MinLowCutHz, MaxLowCutHz)
	highHz = core.Clamp(core.Sanitize(highHz, DefaultHighCutHz), MinHighCutHz, MaxHighCutHz)
	if lowHz == f.lowHz && highHz == f.highHz {
		return
	}

	f.lowHz, f.highHz = lowHz, highHz
	if f.filters != nil {
		f.redesign()
	}
}

// MagnitudeDB returns the combined response at freqHz.
func (f *CutFilters) MagnitudeDB(freqHz float64) float64 {
	if f.filters == nil {
		return 0
	}
	return f.filters.MagnitudeDB(freqHz, f.sampleRate)
}

// Process filters buf in place.
func (f *CutFilters) Process(buf *buffer.Buffer) {
	if !f.prepared || buf == nil {
		return
	}

	f.filters.Process(buf)
}

func (f *CutFilters) redesign() {
	f.filters.Set(0, biquad.Highpass(f.lowHz, biquad.ButterworthQ, f.sampleRate))
	f.filters.Set(1, biquad.Lowpass(f.highHz, biquad.ButterworthQ, f.sampleRate))
}
