package conv_test

import (
	"fmt"

	"github.com/cwbudde/algo-irfx/dsp/conv"
)

func ExampleDirect() {
	// A dry tap plus an echo two samples later.
	out, _ := conv.Direct([]float64{1, 0.5}, []float64{1, 0, 0.25})
	fmt.Println(out)

	// Output:
	// [1 0.5 0.25 0.125]
}

func ExamplePartitioned() {
	kernel := make([]float64, 300)
	kernel[0] = 1
	kernel[200] = 0.5

	p, _ := conv.NewPartitioned(kernel, conv.WithPartitionSize(64))

	buf := make([]float64, 256)
	buf[0] = 1
	p.ProcessBlock(buf)

	fmt.Printf("latency=%d out[0]=%.2f out[200]=%.2f\n", p.Latency(), buf[0], buf[200])

	// Output:
	// latency=0 out[0]=1.00 out[200]=0.50
}
