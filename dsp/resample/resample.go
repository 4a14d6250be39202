package resample

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRate is returned for a non-positive or non-finite rate.
var ErrInvalidRate = errors.New("resample: invalid sample rate")

// maxDenominator bounds the rational approximation of the rate ratio.
const maxDenominator = 4096

// Quality selects the anti-aliasing filter.
type Quality int

const (
	QualityFast Quality = iota
	QualityBalanced
	QualityBest
)

// prototype holds the filter parameters of a quality mode. cutoff scales
// the lower of the two Nyquist frequencies.
type prototype struct {
	tapsPerPhase int
	cutoff       float64
	beta         float64
}

func (q Quality) prototype() prototype {
	switch q {
	case QualityFast:
		return prototype{tapsPerPhase: 16, cutoff: 0.88, beta: 5}
	case QualityBest:
		return prototype{tapsPerPhase: 64, cutoff: 0.96, beta: 9}
	default:
		return prototype{tapsPerPhase: 32, cutoff: 0.92, beta: 7.5}
	}
}

// Option configures Convert.
type Option func(*Quality)

// WithQuality selects the filter used by Convert. The default is
// QualityBalanced.
func WithQuality(q Quality) Option {
	return func(dst *Quality) { *dst = q }
}

// Convert returns input resampled from inRate to outRate as
// ceil(len(input)*outRate/inRate) samples. The ratio is approximated by a
// fraction with a denominator of at most 4096, and the filter is applied
// centred so that a transient at input sample 0 lands on output sample 0.
// Equal rates or empty input return a copy.
func Convert(input []float64, inRate, outRate float64, opts ...Option) ([]float64, error) {
	if !validRate(inRate) || !validRate(outRate) {
		return nil, fmt.Errorf("%w: %v -> %v", ErrInvalidRate, inRate, outRate)
	}
	if inRate == outRate || len(input) == 0 {
		return append([]float64(nil), input...), nil
	}

	q := QualityBalanced
	for _, opt := range opts {
		if opt != nil {
			opt(&q)
		}
	}

	up, down := approximateRatio(outRate/inRate, maxDenominator)
	h := design(up, down, q.prototype())
	center := (len(h) - 1) / 2

	// Output m sits at position m*down+center of the input upsampled by up,
	// where only every up-th sample is non-zero.
	out := make([]float64, (len(input)*up+down-1)/down)
	for m := range out {
		t := m*down + center
		first := max(0, (t-len(h)+up)/up)
		last := min(len(input)-1, t/up)

		var acc float64
		for j := first; j <= last; j++ {
			acc += h[t-j*up] * input[j]
		}
		out[m] = acc
	}
	return out, nil
}

func validRate(r float64) bool {
	return r > 0 && !math.IsInf(r, 0)
}
