// Package conv convolves audio with impulse responses.
//
// [Partitioned] is the streaming convolver used on the audio path. It is
// uniformly partitioned overlap-save with a frequency-domain delay line;
// the first partition runs in the time domain, so output is sample-aligned
// with input. [Direct] is the plain O(N*M) sum it is tested against.
//
// Streaming with a fixed kernel:
//
//	p, err := conv.NewPartitioned(kernel, conv.WithPartitionSize(128))
//	p.ProcessBlock(block) // in place, any block length
//
// # Partition Size
//
// The partition size P trades per-sample work on the direct head (P
// multiply-adds per sample) against the number of spectra in the delay line
// (ceil(len(kernel)/P) - 1). The default of 128 suits kernels from a few
// hundred to a few hundred thousand taps.
package conv
