package ir

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/resample"
)

// Errors returned by impulse response loading and preparation.
var (
	ErrEmptyImpulseResponse = errors.New("ir: empty impulse response")
	ErrUnsupportedFormat    = errors.New("ir: unsupported audio format")
	ErrInvalidSampleRate    = errors.New("ir: invalid sample rate")
)

const (
	// DefaultTrimThresholdDB is the absolute level below which leading and
	// trailing samples are considered silence.
	DefaultTrimThresholdDB = -80.0

	// normalizeTarget is the energy of the loudest channel after
	// normalisation, expressed as its square root.
	normalizeTarget = 0.125
)

// ImpulseResponse is a planar multichannel impulse response.
type ImpulseResponse struct {
	SampleRate float64
	Channels   [][]float64
}

// Frames returns the length of the shortest channel.
func (r *ImpulseResponse) Frames() int {
	if len(r.Channels) == 0 {
		return 0
	}

	n := len(r.Channels[0])
	for _, ch := range r.Channels[1:] {
		n = min(n, len(ch))
	}

	return n
}

// Duration returns the response length in seconds.
func (r *ImpulseResponse) Duration() float64 {
	if r.SampleRate <= 0 {
		return 0
	}
	return float64(r.Frames()) / r.SampleRate
}

// Clone returns a deep copy.
func (r *ImpulseResponse) Clone() *ImpulseResponse {
	out := &ImpulseResponse{
		SampleRate: r.SampleRate,
		Channels:   make([][]float64, len(r.Channels)),
	}
	for i, ch := range r.Channels {
		out.Channels[i] = append([]float64(nil), ch...)
	}
	return out
}

// PrepareOption mutates preparation settings.
type PrepareOption func(*prepareConfig)

type prepareConfig struct {
	trim        bool
	trimDB      float64
	normalize   bool
	forceStereo bool
	quality     resample.Quality
}

func defaultPrepareConfig() prepareConfig {
	return prepareConfig{
		trim:        true,
		trimDB:      DefaultTrimThresholdDB,
		normalize:   true,
		forceStereo: true,
		quality:     resample.QualityBalanced,
	}
}

// WithTrimThresholdDB sets the silence threshold for trimming. Values above
// 0 dB or NaN are ignored.
func WithTrimThresholdDB(db float64) PrepareOption {
	return func(cfg *prepareConfig) {
		if !math.IsNaN(db) && db <= 0 {
			cfg.trimDB = db
		}
	}
}

// WithTrim enables or disables silence trimming.
func WithTrim(enabled bool) PrepareOption {
	return func(cfg *prepareConfig) {
		cfg.trim = enabled
	}
}

// WithNormalize enables or disables energy normalisation.
func WithNormalize(enabled bool) PrepareOption {
	return func(cfg *prepareConfig) {
		cfg.normalize = enabled
	}
}

// WithForceStereo controls mono-to-stereo duplication.
func WithForceStereo(enabled bool) PrepareOption {
	return func(cfg *prepareConfig) {
		cfg.forceStereo = enabled
	}
}

// WithResampleQuality selects the resampler quality.
func WithResampleQuality(q resample.Quality) PrepareOption {
	return func(cfg *prepareConfig) {
		cfg.quality = q
	}
}

// Prepare returns a copy of r converted for an engine running at
// targetRate. The steps are, in order: resample, channel layout
// (mono duplicated to stereo, channels beyond two dropped), trim, normalise.
// The receiver is not modified.
func (r *ImpulseResponse) Prepare(targetRate float64, opts ...PrepareOption) (*ImpulseResponse, error) {
	if targetRate <= 0 || math.IsNaN(targetRate) || math.IsInf(targetRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, targetRate)
	}
	if r.SampleRate <= 0 || math.IsNaN(r.SampleRate) {
		return nil, fmt.Errorf("%w: source rate %v", ErrInvalidSampleRate, r.SampleRate)
	}

	frames := r.Frames()
	if frames == 0 {
		return nil, ErrEmptyImpulseResponse
	}

	cfg := defaultPrepareConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	numCh := len(r.Channels)
	if cfg.forceStereo {
		numCh = core.MaxChannels
	}

	out := &ImpulseResponse{SampleRate: targetRate, Channels: make([][]float64, numCh)}

	for ch := range numCh {
		src := r.Channels[min(ch, len(r.Channels)-1)][:frames]

		converted, err := resample.Convert(src, r.SampleRate, targetRate, resample.WithQuality(cfg.quality))
		if err != nil {
			return nil, fmt.Errorf("ir: resample channel %d: %w", ch, err)
		}
		out.Channels[ch] = converted
	}

	if cfg.trim {
		if !out.trim(core.DBToLinear(cfg.trimDB)) {
			return nil, fmt.Errorf("%w: no sample above %.1f dB", ErrEmptyImpulseResponse, cfg.trimDB)
		}
	}

	if cfg.normalize {
		out.normalize()
	}

	return out, nil
}

// trim cuts leading and trailing frames in which no channel exceeds
// threshold. It reports false when every frame is below threshold.
func (r *ImpulseResponse) trim(threshold float64) bool {
	frames := r.Frames()

	first, last := frames, -1
	for _, ch := range r.Channels {
		for i := 0; i < frames; i++ {
			if math.Abs(ch[i]) > threshold {
				first = min(first, i)
				break
			}
		}
		for i := frames - 1; i >= 0; i-- {
			if math.Abs(ch[i]) > threshold {
				last = max(last, i)
				break
			}
		}
	}

	if last < first {
		return false
	}

	for i, ch := range r.Channels {
		r.Channels[i] = ch[first : last+1]
	}

	return true
}

// normalize scales all channels by the same factor so that the channel with
// the most energy has a root energy of normalizeTarget.
func (r *ImpulseResponse) normalize() {
	var maxEnergy float64
	for _, ch := range r.Channels {
		maxEnergy = max(maxEnergy, vecmath.DotProduct(ch, ch))
	}

	if maxEnergy == 0 {
		return
	}

	g := normalizeTarget / math.Sqrt(maxEnergy)
	for _, ch := range r.Channels {
		vecmath.ScaleBlockInPlace(ch, g)
	}
}
