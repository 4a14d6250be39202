package ir

import (
	"math"

	"github.com/cwbudde/algo-irfx/dsp/core"
)

const (
	decayTargetDB = -60.0
	fitStartDB    = -5.0
	fitEndDB      = -25.0
)

// Analysis summarises a response for display.
type Analysis struct {
	Frames    int
	Channels  int
	Duration  float64
	PeakIndex int
	PeakDB    float64

	// CenterTime is the energy centroid after the peak, in seconds.
	CenterTime float64

	// DecayTime is the time from the peak until the remaining energy is
	// 60 dB below the total. When the response ends first it is
	// extrapolated from the -5 to -25 dB slope, and 0 if even that range is
	// not reached.
	DecayTime float64
}

// Analyze measures r. Energy is summed over all channels.
func (r *ImpulseResponse) Analyze() (Analysis, error) {
	frames := r.Frames()
	if frames == 0 {
		return Analysis{}, ErrEmptyImpulseResponse
	}
	if r.SampleRate <= 0 || math.IsNaN(r.SampleRate) || math.IsInf(r.SampleRate, 0) {
		return Analysis{}, ErrInvalidSampleRate
	}

	energy := make([]float64, frames)
	peak, peakIdx := 0.0, 0
	for _, ch := range r.Channels {
		for i, v := range ch[:frames] {
			energy[i] += v * v
			if a := math.Abs(v); a > peak {
				peak, peakIdx = a, i
			}
		}
	}

	a := Analysis{
		Frames:    frames,
		Channels:  len(r.Channels),
		Duration:  r.Duration(),
		PeakIndex: peakIdx,
		PeakDB:    core.LinearToDB(peak),
	}
	if peak == 0 {
		return a, nil
	}

	tail := energy[peakIdx:]
	a.CenterTime = centroid(tail) / r.SampleRate
	a.DecayTime = decayTime(backwardIntegral(tail), r.SampleRate)

	return a, nil
}

func centroid(energy []float64) float64 {
	var sum, weighted float64
	for i, e := range energy {
		sum += e
		weighted += float64(i) * e
	}
	if sum == 0 {
		return 0
	}
	return weighted / sum
}

// backwardIntegral returns the remaining energy at each index relative to
// the total, in dB.
func backwardIntegral(energy []float64) []float64 {
	curve := make([]float64, len(energy))
	var acc float64
	for i := len(energy) - 1; i >= 0; i-- {
		acc += energy[i]
		curve[i] = acc
	}

	total := curve[0]
	for i, v := range curve {
		curve[i] = 10 * math.Log10(math.Max(v/total, 1e-30))
	}
	return curve
}

func decayTime(curve []float64, sampleRate float64) float64 {
	start, end := -1, -1
	for i, db := range curve {
		if db <= decayTargetDB {
			return float64(i) / sampleRate
		}
		if start < 0 && db <= fitStartDB {
			start = i
		}
		if end < 0 && db <= fitEndDB {
			end = i
		}
	}
	if start < 0 || end <= start {
		return 0
	}

	// Least-squares slope in dB per sample over [start, end].
	var sx, sy, sxx, sxy float64
	for i := start; i <= end; i++ {
		x := float64(i - start)
		sx += x
		sy += curve[i]
		sxx += x * x
		sxy += x * curve[i]
	}
	n := float64(end - start + 1)
	slope := (n*sxy - sx*sy) / (n*sxx - sx*sx)
	if slope >= 0 {
		return 0
	}
	return decayTargetDB / slope / sampleRate
}
