package conv

import (
	"errors"
	"slices"

	"github.com/cwbudde/algo-vecmath"
)

var (
	ErrEmptyInput           = errors.New("conv: empty input")
	ErrEmptyImpulseResponse = errors.New("conv: empty impulse response")
	ErrInvalidPartitionSize = errors.New("conv: invalid partition size")
)

// Direct returns the full linear convolution of signal with kernel,
// len(signal)+len(kernel)-1 samples long. It costs O(N*M) and serves as
// the reference the streaming convolver is checked against.
func Direct(signal, kernel []float64) ([]float64, error) {
	switch {
	case len(signal) == 0:
		return nil, ErrEmptyInput
	case len(kernel) == 0:
		return nil, ErrEmptyImpulseResponse
	}

	m := len(kernel)
	rev := slices.Clone(kernel)
	slices.Reverse(rev)

	// Zero padding on both sides lets every output be one dot product.
	padded := make([]float64, len(signal)+2*(m-1))
	copy(padded[m-1:], signal)

	out := make([]float64, len(signal)+m-1)
	for n := range out {
		out[n] = vecmath.DotProduct(padded[n:n+m], rev)
	}
	return out, nil
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
