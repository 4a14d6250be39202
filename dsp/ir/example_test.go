package ir_test

import (
	"fmt"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/ir"
)

func ExampleImpulseResponse_Prepare() {
	raw := &ir.ImpulseResponse{
		SampleRate: 48000,
		Channels:   [][]float64{{0, 0, 1, 0.5, 0}},
	}

	resp, _ := raw.Prepare(48000, ir.WithNormalize(false))
	fmt.Printf("channels=%d frames=%d first=%.2f\n", len(resp.Channels), resp.Frames(), resp.Channels[1][0])

	// Output:
	// channels=2 frames=2 first=1.00
}

func ExampleConvolver() {
	resp := &ir.ImpulseResponse{SampleRate: 48000, Channels: [][]float64{{1, 0.5}, {0.5, 0}}}
	c, _ := ir.NewConvolver(resp)

	buf := buffer.FromChannels([][]float64{{1, 0, 0}, {1, 0, 0}})
	c.Process(buf)

	fmt.Printf("L=%.2f R=%.2f\n", buf.Channel(0), buf.Channel(1))

	// Output:
	// L=[1.00 0.50 0.00] R=[0.50 0.00 0.00]
}
