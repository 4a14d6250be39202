// Package tonestack provides the fixed three-band equalizer and the
// impulse-response cut filters of the signal chain.
//
// [ToneStack] cascades a low shelf at 110 Hz, a mid peak with a movable
// centre (250 Hz to 5 kHz) and a high shelf at 4.5 kHz. [CutFilters] is the
// high-pass/low-pass pair applied after impulse-response mixing.
//
// Both keep one biquad chain per channel, sized by Prepare. Parameter
// setters recompute coefficients only when a value actually changes and
// keep the filter state, so they may be called once per block.
package tonestack
