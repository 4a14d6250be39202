package buffer

import (
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Buffer is a planar float64 sample buffer with a fixed capacity.
type Buffer struct {
	store    [][]float64
	views    [][]float64
	channels int
	frames   int
}

// New returns a zeroed buffer with capacity for channels x frames samples.
// The active size starts at full capacity.
func New(channels, frames int) *Buffer {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}
	b := &Buffer{
		store: make([][]float64, channels),
		views: make([][]float64, channels),
	}
	for ch := range b.store {
		b.store[ch] = make([]float64, frames)
	}
	b.SetSize(channels, frames)
	return b
}

// FromChannels wraps existing planar data without copying. All channels are
// truncated to the shortest one. Capacity equals the wrapped size.
func FromChannels(data [][]float64) *Buffer {
	frames := -1
	for _, ch := range data {
		if frames < 0 || len(ch) < frames {
			frames = len(ch)
		}
	}
	if frames < 0 {
		frames = 0
	}
	b := &Buffer{
		store: make([][]float64, len(data)),
		views: make([][]float64, len(data)),
	}
	for ch := range data {
		b.store[ch] = data[ch][:frames:frames]
		b.views[ch] = b.store[ch]
	}
	b.channels, b.frames = len(data), frames
	return b
}

// Channels returns the active channel count.
func (b *Buffer) Channels() int { return b.channels }

// Frames returns the active number of samples per channel.
func (b *Buffer) Frames() int { return b.frames }

// ChannelCapacity returns the maximum channel count.
func (b *Buffer) ChannelCapacity() int { return len(b.store) }

// FrameCapacity returns the maximum number of frames per channel.
func (b *Buffer) FrameCapacity() int {
	if len(b.store) == 0 {
		return 0
	}
	return len(b.store[0])
}

// Channel returns the active samples of channel ch.
func (b *Buffer) Channel(ch int) []float64 {
	return b.views[ch]
}

// Data returns the active channels. The outer slice must not be modified.
func (b *Buffer) Data() [][]float64 {
	return b.views[:b.channels]
}

// SetSize changes the active size, clamped to capacity. Samples exposed by
// growing the frame count are zeroed. Channels that become active are
// zeroed over the full frame range.
func (b *Buffer) SetSize(channels, frames int) {
	channels = min(max(channels, 0), len(b.store))
	frames = min(max(frames, 0), b.FrameCapacity())

	for ch := 0; ch < channels; ch++ {
		switch {
		case ch >= b.channels:
			clear(b.store[ch][:frames])
		case frames > b.frames:
			clear(b.store[ch][b.frames:frames])
		}
		b.views[ch] = b.store[ch][:frames]
	}
	for ch := channels; ch < len(b.views); ch++ {
		b.views[ch] = nil
	}
	b.channels = channels
	b.frames = frames
}

// ExpandToStereo duplicates channel 0 into channel 1 when the buffer is mono
// and has capacity for a second channel. It reports whether the buffer is
// stereo afterwards.
func (b *Buffer) ExpandToStereo() bool {
	if b.channels >= 2 {
		return true
	}
	if b.channels != 1 || len(b.store) < 2 {
		return false
	}
	copy(b.store[1][:b.frames], b.views[0])
	b.views[1] = b.store[1][:b.frames]
	b.channels = 2
	return true
}

// Clear zeroes the active region.
func (b *Buffer) Clear() {
	for _, ch := range b.Data() {
		clear(ch)
	}
}

// ApplyGain scales every active sample by gain.
func (b *Buffer) ApplyGain(gain float64) {
	if gain == 1 {
		return
	}
	for _, ch := range b.Data() {
		vecmath.ScaleBlockInPlace(ch, gain)
	}
}

// ApplyChannelGain scales one channel by gain. Out-of-range channels are ignored.
func (b *Buffer) ApplyChannelGain(ch int, gain float64) {
	if ch < 0 || ch >= b.channels || gain == 1 {
		return
	}
	vecmath.ScaleBlockInPlace(b.views[ch], gain)
}

// CopyFrom copies the overlapping region of src into b without resizing b.
func (b *Buffer) CopyFrom(src *Buffer) {
	chs := min(b.channels, src.channels)
	for ch := 0; ch < chs; ch++ {
		copy(b.views[ch], src.views[ch])
	}
}

// AddFrom mixes the overlapping region of src into b.
func (b *Buffer) AddFrom(src *Buffer) {
	chs := min(b.channels, src.channels)
	n := min(b.frames, src.frames)
	for ch := 0; ch < chs; ch++ {
		vecmath.AddBlockInPlace(b.views[ch][:n], src.views[ch][:n])
	}
}

// Peak returns the largest absolute sample across all active channels.
func (b *Buffer) Peak() float64 {
	p := 0.0
	for _, ch := range b.Data() {
		p = max(p, vecmath.MaxAbs(ch))
	}
	return p
}

// PeakChannel returns the largest absolute sample of one channel.
func (b *Buffer) PeakChannel(ch int) float64 {
	if ch < 0 || ch >= b.channels {
		return 0
	}
	return vecmath.MaxAbs(b.views[ch])
}

// ExceedsMagnitude reports whether any active sample is above limit in
// magnitude.
func (b *Buffer) ExceedsMagnitude(limit float64) bool {
	return b.Peak() > limit
}

// NewView returns an empty buffer with room for up to channels channel
// views. Point it into another buffer with Window.
func NewView(channels int) *Buffer {
	channels = max(channels, 0)
	return &Buffer{
		store: make([][]float64, 0, channels),
		views: make([][]float64, channels),
	}
}

// Window points dst at frames [start, end) of b without copying. dst
// covers at most as many channels as it was created for. Writes through
// dst land in b.
func (b *Buffer) Window(dst *Buffer, start, end int) {
	start = min(max(start, 0), b.frames)
	end = min(max(end, start), b.frames)
	chs := min(len(b.store), cap(dst.store), len(dst.views))

	dst.store = dst.store[:chs]
	for ch := range dst.store {
		dst.store[ch] = b.store[ch][start:end:end]
	}
	dst.channels = min(b.channels, chs)
	dst.frames = end - start
	for ch := range dst.views {
		if ch < dst.channels {
			dst.views[ch] = dst.store[ch]
		} else {
			dst.views[ch] = nil
		}
	}
}
