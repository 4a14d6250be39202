package biquad

import (
	"math"
	"math/cmplx"
)

// ButterworthQ is the quality factor of a maximally flat second-order
// response.
const ButterworthQ = 1 / math.Sqrt2

// maxCornerRatio keeps corner frequencies just below Nyquist, so ranges
// written for 44.1 kHz still give a stable filter at lower rates.
const maxCornerRatio = 0.49

// Coefficients of one second-order section with a0 normalised to 1, in
// transposed direct form II:
//
//	y  = B0*x + s1
//	s1 = B1*x - A1*y + s2
//	s2 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Identity returns pass-through coefficients.
func Identity() Coefficients { return Coefficients{B0: 1} }

// Response returns H(e^jw) at freqHz.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	z1 := cmplx.Exp(complex(0, -2*math.Pi*freqHz/sampleRate))
	z2 := z1 * z1
	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return num / den
}

// MagnitudeDB returns the gain at freqHz in dB.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// rbj holds the intermediate terms shared by the Audio EQ Cookbook
// designs.
type rbj struct {
	cos, alpha float64
	amp        float64
}

// cookbook derives the design terms, or reports false when the inputs
// cannot describe a filter. Non-positive or non-finite q falls back to
// ButterworthQ and a non-finite gain to 0 dB.
func cookbook(freq, gainDB, q, sampleRate float64) (rbj, bool) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) || !(freq > 0) {
		return rbj{}, false
	}
	if !(q > 0) || math.IsInf(q, 0) {
		q = ButterworthQ
	}
	if math.IsNaN(gainDB) || math.IsInf(gainDB, 0) {
		gainDB = 0
	}

	w0 := 2 * math.Pi * math.Min(freq, sampleRate*maxCornerRatio) / sampleRate
	return rbj{
		cos:   math.Cos(w0),
		alpha: math.Sin(w0) / (2 * q),
		amp:   math.Pow(10, gainDB/40),
	}, true
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Identity()
	}
	inv := 1 / a0
	return Coefficients{B0: b0 * inv, B1: b1 * inv, B2: b2 * inv, A1: a1 * inv, A2: a2 * inv}
}

// Lowpass is a second-order low-pass at freq. Invalid input yields
// Identity, as for every design below.
func Lowpass(freq, q, sampleRate float64) Coefficients {
	d, ok := cookbook(freq, 0, q, sampleRate)
	if !ok {
		return Identity()
	}
	b := (1 - d.cos) / 2
	return normalize(b, 2*b, b, 1+d.alpha, -2*d.cos, 1-d.alpha)
}

// Highpass is a second-order high-pass at freq.
func Highpass(freq, q, sampleRate float64) Coefficients {
	d, ok := cookbook(freq, 0, q, sampleRate)
	if !ok {
		return Identity()
	}
	b := (1 + d.cos) / 2
	return normalize(b, -2*b, b, 1+d.alpha, -2*d.cos, 1-d.alpha)
}

// Peak boosts or cuts gainDB around freq.
func Peak(freq, gainDB, q, sampleRate float64) Coefficients {
	d, ok := cookbook(freq, gainDB, q, sampleRate)
	if !ok {
		return Identity()
	}
	return normalize(
		1+d.alpha*d.amp, -2*d.cos, 1-d.alpha*d.amp,
		1+d.alpha/d.amp, -2*d.cos, 1-d.alpha/d.amp,
	)
}

// LowShelf applies gainDB below freq.
func LowShelf(freq, gainDB, q, sampleRate float64) Coefficients {
	return shelf(freq, gainDB, q, sampleRate, 1)
}

// HighShelf applies gainDB above freq.
func HighShelf(freq, gainDB, q, sampleRate float64) Coefficients {
	return shelf(freq, gainDB, q, sampleRate, -1)
}

// shelf covers both shelves: the high shelf is the low shelf with the sign
// of every cos term flipped (sign = -1).
func shelf(freq, gainDB, q, sampleRate, sign float64) Coefficients {
	d, ok := cookbook(freq, gainDB, q, sampleRate)
	if !ok {
		return Identity()
	}
	a, c := d.amp, sign*d.cos
	beta := 2 * math.Sqrt(a) * d.alpha

	return normalize(
		a*((a+1)-(a-1)*c+beta),
		sign*2*a*((a-1)-(a+1)*c),
		a*((a+1)-(a-1)*c-beta),
		(a+1)+(a-1)*c+beta,
		-sign*2*((a-1)+(a+1)*c),
		(a+1)+(a-1)*c-beta,
	)
}
