// Package saturation implements a console-style saturation stage: a fixed
// low-shelf pre-emphasis, a drive-scaled tanh waveshaper with one of three
// characters, a dry/wet crossfade and a fixed low-pass to tame the
// generated harmonics.
//
// Build with -tags fastmath to replace math.Tanh with an algo-approx based
// approximation.
package saturation
