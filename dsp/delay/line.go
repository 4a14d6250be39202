package delay

// Line is a circular buffer read at whole-sample delays. Reads happen
// before the write of the same sample, so a delay of d returns the sample
// written d calls to Write ago.
type Line struct {
	buf   []float64
	write int
}

// NewLine returns a silent line holding size samples, at least one.
func NewLine(size int) *Line {
	return &Line{buf: make([]float64, max(size, 1))}
}

// Len returns the capacity in samples.
func (l *Line) Len() int { return len(l.buf) }

// WriteCursor returns the position the next Write fills.
func (l *Line) WriteCursor() int { return l.write }

// Read returns the sample delay positions behind the write cursor.
func (l *Line) Read(delay int) float64 {
	return l.buf[ReadIndex(l.write, delay, len(l.buf))]
}

// Write stores x and advances the cursor, wrapping at the end.
func (l *Line) Write(x float64) {
	l.buf[l.write] = x
	l.write++
	if l.write == len(l.buf) {
		l.write = 0
	}
}

// Reset clears the samples and rewinds the cursor.
func (l *Line) Reset() {
	clear(l.buf)
	l.write = 0
}
