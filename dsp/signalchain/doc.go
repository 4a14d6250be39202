// Package signalchain sequences the complete effect: input gain, dual
// impulse-response mixing with cut filters, tone stack, saturation, delay,
// output gain and clip detection.
//
// Controls live in a flat registry of [ParamID]s. A [ParamSource] (usually
// a [Store]) supplies the authoritative values; the [Processor] reads them
// once per block, ramps the continuous ones through 50 ms linear smoothers
// and configures each stage before running it.
//
// Threading follows the usual real-time split. [Processor.Process] runs on
// the audio goroutine and neither locks nor allocates. Parameter writes,
// impulse-response loads and clip-flag reads happen elsewhere and reach the
// audio goroutine through atomics. A loaded impulse response is built off
// the audio goroutine and swapped in at the next block boundary.
//
// Impulse-response mixing:
//
//	both paths active   level, convolve, pan each; sum; +3 dB
//	one path active     level, convolve, pan; +9 dB
//	both paths muted    -100 dB, rest of the chain skipped
//
// With mono output selected both paths are panned to the centre and the
// delay runs its mono topology.
package signalchain
