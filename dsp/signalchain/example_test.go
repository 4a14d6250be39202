package signalchain_test

import (
	"fmt"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/signalchain"
)

func ExampleProcessor() {
	params := signalchain.NewStore()
	params.SetBool(signalchain.ParamIRBypass, true)
	params.Set(signalchain.ParamOutputMode, signalchain.OutputMono)
	params.Set(signalchain.ParamDelayMix, 100)
	params.Set(signalchain.ParamDelayFeedback, 50)
	params.Set(signalchain.ParamDelayTime, 1)

	p := signalchain.New(params)
	cfg := core.ApplyProcessorOptions(core.WithSampleRate(8000), core.WithBlockSize(16))
	if err := p.Prepare(cfg); err != nil {
		fmt.Println(err)
		return
	}

	buf := buffer.New(2, 32)
	buf.Channel(0)[0] = 1
	buf.Channel(1)[0] = 1
	p.Process(buf)

	fmt.Printf("echoes: %.2f %.2f %.2f\n", buf.Channel(0)[8], buf.Channel(0)[16], buf.Channel(0)[24])

	// Output:
	// echoes: 1.00 0.50 0.25
}

func ExampleStore_SetText() {
	params := signalchain.NewStore()
	_ = params.SetText("DelayNote", "1/8")
	_ = params.SetText("DelaySync", "on")

	note := signalchain.ParamDelayNote
	fmt.Println(note, "=", note.Spec().Format(params.Value(note)))

	// Output:
	// DelayNote = 1/8
}
