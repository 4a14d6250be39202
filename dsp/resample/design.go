package resample

import "math"

// design returns a Kaiser-windowed sinc low-pass of p.tapsPerPhase*up taps
// at the upsampled rate, scaled to a DC gain of up so that every polyphase
// branch passes DC at unity.
func design(up, down int, p prototype) []float64 {
	n := p.tapsPerPhase * up
	fc := 0.5 * p.cutoff / float64(max(up, down))
	mid := 0.5 * float64(n-1)

	h := make([]float64, n)
	var sum float64
	for i := range h {
		h[i] = 2 * fc * sinc(2*fc*(float64(i)-mid)) * kaiser(i, n, p.beta)
		sum += h[i]
	}
	for i := range h {
		h[i] *= float64(up) / sum
	}
	return h
}

// approximateRatio returns the continued-fraction convergent of v with the
// largest denominator not above maxDen, in lowest terms.
func approximateRatio(v float64, maxDen int) (num, den int) {
	if !(v > 0) || math.IsInf(v, 0) {
		return 1, 1
	}

	pPrev, qPrev := 1.0, 0.0
	p, q := math.Floor(v), 1.0
	for x := v; ; {
		frac := x - math.Floor(x)
		if frac < 1e-12 {
			break
		}
		x = 1 / frac
		a := math.Floor(x)
		if a*q+qPrev > float64(maxDen) {
			break
		}
		pPrev, p = p, a*p+pPrev
		qPrev, q = q, a*q+qPrev
	}

	num, den = int(math.Round(p)), int(math.Round(q))
	if num <= 0 || den <= 0 {
		return 1, 1
	}
	g := gcd(num, den)
	return num / g, den / g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

func kaiser(i, n int, beta float64) float64 {
	if n <= 1 {
		return 1
	}
	t := 2*float64(i)/float64(n-1) - 1
	return besselI0(beta*math.Sqrt(max(0, 1-t*t))) / besselI0(beta)
}

// besselI0 is the zeroth-order modified Bessel function of the first kind,
// summed until the terms stop contributing.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	q := x * x / 4
	for k := 1.0; term > 1e-16*sum; k++ {
		term *= q / (k * k)
		sum += term
	}
	return sum
}
