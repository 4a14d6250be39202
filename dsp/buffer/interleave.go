package buffer

// Deinterleave reads interleaved float32 frames into b. The active size is
// set to channels x len(src)/channels, clamped to capacity. It returns the
// number of frames read.
func (b *Buffer) Deinterleave(src []float32, channels int) int {
	if channels <= 0 {
		return 0
	}
	b.SetSize(channels, len(src)/channels)
	chs := b.channels
	for i := 0; i < b.frames; i++ {
		frame := src[i*channels:]
		for ch := 0; ch < chs; ch++ {
			b.views[ch][i] = float64(frame[ch])
		}
	}
	return b.frames
}

// Interleave writes the active frames of b into dst as interleaved float32
// with the given channel count. Missing source channels repeat the last
// available one. It returns the number of frames written.
func (b *Buffer) Interleave(dst []float32, channels int) int {
	if channels <= 0 || b.channels == 0 {
		return 0
	}
	n := min(b.frames, len(dst)/channels)
	for i := 0; i < n; i++ {
		frame := dst[i*channels:]
		for ch := 0; ch < channels; ch++ {
			frame[ch] = float32(b.views[min(ch, b.channels-1)][i])
		}
	}
	return n
}
