// Package delay implements a tempo-syncable stereo feedback delay.
//
// The engine owns one [Line] per channel, sized once by Prepare
// (2 seconds by default). The delay length is derived once per block, either
// from a millisecond time or from host tempo and a note [Subdivision], and is
// clamped to [1, capacity-1] samples. The write cursor advances one sample at
// a time inside the block and every read goes through [ReadIndex].
//
// Three routing topologies are available: [Mono] sums the input into one
// echo shared by both outputs, [PingPong] cross-feeds the channels with a
// phase-inverted left echo, and [Stereo] runs the channels independently.
// The [Tape] character smooths the delayed signal with a one-pole low-pass,
// saturates it with tanh and soft-limits the feedback path.
package delay
