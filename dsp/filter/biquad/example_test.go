package biquad_test

import (
	"fmt"

	"github.com/cwbudde/algo-irfx/dsp/filter/biquad"
)

func ExampleLowShelf() {
	c := biquad.LowShelf(150, 2, biquad.ButterworthQ, 48000)

	fmt.Printf("20 Hz:    %+.2f dB\n", c.MagnitudeDB(20, 48000))
	fmt.Printf("10000 Hz: %+.2f dB\n", c.MagnitudeDB(10000, 48000))
	// Output:
	// 20 Hz:    +2.00 dB
	// 10000 Hz: +0.00 dB
}

func ExampleCascade_Tick() {
	c := biquad.NewCascade(1, 1)
	c.Set(0, biquad.Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04})

	for i := range 4 {
		x := 0.0
		if i == 0 {
			x = 1
		}
		fmt.Printf("y[%d] = %.4f\n", i, c.Tick(0, x))
	}
	// Output:
	// y[0] = 0.2500
	// y[1] = 0.5500
	// y[2] = 0.3500
	// y[3] = 0.0480
}
