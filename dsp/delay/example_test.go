package delay_test

import (
	"fmt"

	"github.com/cwbudde/algo-irfx/dsp/delay"
)

func ExampleSyncedDelaySamples() {
	for _, sub := range []delay.Subdivision{delay.Quarter, delay.DottedQuarter, delay.Eighth} {
		fmt.Printf("%-11s %d\n", sub, delay.SyncedDelaySamples(120, sub, 44100))
	}

	// Output:
	// 1/4         22050
	// 1/4 Dotted  33075
	// 1/8         11025
}
