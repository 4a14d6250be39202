// Package core holds the configuration and scalar helpers shared by the
// processing stages.
package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSampleRate = errors.New("core: invalid sample rate")
	ErrInvalidChannels   = errors.New("core: invalid channel count")
	ErrInvalidBlockSize  = errors.New("core: invalid block size")
)

// MaxChannels is the widest layout a processor accepts: mono or stereo.
const MaxChannels = 2

// Defaults used by ApplyProcessorOptions.
const (
	DefaultSampleRate = 48000.0
	DefaultBlockSize  = 512
	DefaultChannels   = 2
)

// ProcessorConfig is what a processor is prepared with: the host rate,
// the largest block it will be handed and the number of output channels.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	Channels   int
}

// ProcessorOption adjusts one field of a ProcessorConfig. Out-of-range
// values are ignored and the default kept.
type ProcessorOption func(*ProcessorConfig)

func WithSampleRate(hz float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if hz > 0 {
			cfg.SampleRate = hz
		}
	}
}

func WithBlockSize(frames int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if frames > 0 {
			cfg.BlockSize = frames
		}
	}
}

func WithChannels(n int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if n >= 1 && n <= MaxChannels {
			cfg.Channels = n
		}
	}
}

// ApplyProcessorOptions starts from the defaults and applies opts in order.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := ProcessorConfig{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
		Channels:   DefaultChannels,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Stereo reports whether the processor writes two output channels.
func (cfg ProcessorConfig) Stereo() bool { return cfg.Channels == 2 }

// Validate returns the first field that cannot be prepared, wrapping one of
// the sentinel errors above.
func (cfg ProcessorConfig) Validate() error {
	switch {
	case !(cfg.SampleRate > 0):
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, cfg.SampleRate)
	case cfg.BlockSize <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, cfg.BlockSize)
	case cfg.Channels < 1 || cfg.Channels > MaxChannels:
		return fmt.Errorf("%w: %d", ErrInvalidChannels, cfg.Channels)
	}
	return nil
}
