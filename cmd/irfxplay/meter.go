package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/cwbudde/algo-irfx/dsp/core"
)

const (
	meterFloorDB  = -60.0
	meterInterval = 100 * time.Millisecond
	meterLabel    = 24
)

// meterLine renders one status line of width columns for a peak level.
func meterLine(peak float64, clipped bool, width int) string {
	db := meterFloorDB
	if peak > 0 {
		db = max(core.LinearToDB(peak), meterFloorDB)
	}

	bar := max(width-meterLabel, 10)
	lit := int(math.Round(float64(bar) * (db - meterFloorDB) / -meterFloorDB))
	lit = min(max(lit, 0), bar)

	flag := "    "
	if clipped {
		flag = "CLIP"
	}
	return fmt.Sprintf("[%s%s] %6.1f dB %s", strings.Repeat("#", lit), strings.Repeat("-", bar-lit), db, flag)
}

// runMeter redraws the level meter on w until ctx is done. Nothing is
// drawn when fd is not a terminal.
func runMeter(ctx context.Context, w io.Writer, fd int, s *stream) {
	if !term.IsTerminal(fd) {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(meterInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return
		case <-ticker.C:
			width, _, err := term.GetSize(fd)
			if err != nil {
				width = 80
			}
			peak, clipped := s.takePeak()
			fmt.Fprintf(w, "\r%s", meterLine(peak, clipped, width-1))
		}
	}
}
