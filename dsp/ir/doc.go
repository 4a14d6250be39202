// Package ir loads, prepares and convolves impulse responses.
//
// An [ImpulseResponse] is decoded from a WAV file ([Decode], [Load]) and
// prepared for a target engine rate with [ImpulseResponse.Prepare]:
// resampled, forced to stereo, trimmed of leading and trailing silence and
// energy-normalised. A prepared response is turned into a [Convolver], which
// runs one zero-latency partitioned convolution per channel.
//
// Loading and preparation allocate and may take milliseconds for long
// responses; they belong off the audio thread. [Convolver.Process] does not
// allocate.
//
// [Cache] keeps prepared responses keyed by path and sample rate so that
// switching between a small set of responses does not hit the file system
// or the resampler again.
package ir
