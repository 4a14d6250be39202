package core

import "math"

// denormalFloor is the magnitude below which filter and feedback state is
// forced to zero.
const denormalFloor = 1e-30

// Clamp bounds value to [lo, hi], accepting the bounds in either order.
// NaN maps to the lower bound so a corrupt control never reaches the audio
// path.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case value < lo || math.IsNaN(value):
		return lo
	case value > hi:
		return hi
	}
	return value
}

// Sanitize replaces NaN and ±Inf with fallback.
func Sanitize(x, fallback float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fallback
	}
	return x
}

// MapRange clamps x to [inLo, inHi] and maps it linearly onto
// [outLo, outHi]. An empty input range maps everything to outLo.
func MapRange(x, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}
	t := (Clamp(x, inLo, inHi) - inLo) / (inHi - inLo)
	return outLo + t*(outHi-outLo)
}

// FlushDenormals returns 0 for values too small to matter.
func FlushDenormals(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return 0
	}
	return x
}
