package core

import "math"

// DBToLinear converts a level in dB to an amplitude factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts an amplitude factor to dB. Silence is -Inf and a
// negative amplitude is NaN.
func LinearToDB(amp float64) float64 {
	switch {
	case amp < 0:
		return math.NaN()
	case amp == 0:
		return math.Inf(-1)
	}
	return 20 * math.Log10(amp)
}
