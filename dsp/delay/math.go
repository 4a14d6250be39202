//go:build !fastmath

package delay

import "math"

func mathTanh(x float64) float64 {
	return math.Tanh(x)
}
