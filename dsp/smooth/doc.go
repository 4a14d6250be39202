// Package smooth provides linear parameter ramps that remove zipper noise
// from block-rate control changes.
//
// A control goroutine publishes targets with [Linear.SetTarget]; the audio
// goroutine calls [Linear.Advance] once per block and reads
// [Linear.Current]. The handoff is a single atomic word, so neither side
// ever blocks.
package smooth
