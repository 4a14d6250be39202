// Package pan implements the equal-power (sine/cosine) panning law used to
// place the two impulse-response paths in the stereo field.
package pan

import (
	"math"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/core"
)

// Gains returns the left and right gains for pan in [-1, 1], where -1 is
// hard left and +1 hard right. Out-of-range and NaN values are clamped.
// left*left + right*right is always 1.
func Gains(pan float64) (left, right float64) {
	pan = core.Clamp(pan, -1, 1)
	angle := math.Pi / 4 * (1 - pan)
	return math.Sin(angle), math.Cos(angle)
}

// Apply pans buf in place. A mono buffer with room for a second channel is
// duplicated to stereo first. Stereo content gets the gains applied directly
// with no channel folding. It reports whether the buffer was panned.
func Apply(buf *buffer.Buffer, pan float64) bool {
	if buf == nil || !buf.ExpandToStereo() {
		return false
	}
	left, right := Gains(pan)
	buf.ApplyChannelGain(0, left)
	buf.ApplyChannelGain(1, right)
	return true
}
