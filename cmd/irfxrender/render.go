package main

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/spf13/afero"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/dither"
	"github.com/cwbudde/algo-irfx/dsp/ir"
	"github.com/cwbudde/algo-irfx/dsp/signalchain"
)

const maxTailSeconds = 30.0

type options struct {
	input    string
	output   string
	irs      [signalchain.NumSlots]string
	muted    [signalchain.NumSlots]bool
	script   string
	bitDepth int
	dither   dither.Type
	shaping  dither.Shaping
	block    int
	channels int
	tempo    float64
	tail     bool
}

func defaultOptions() options {
	return options{bitDepth: 24, dither: dither.Triangular, block: 512, channels: 2, tempo: 120, tail: true}
}

type report struct {
	sampleRate    float64
	inputFrames   int
	outputFrames  int
	channels      int
	inputPeak     float64
	outputPeak    float64
	clippedBlocks int
	firstClip     float64
}

var errNoInput = errors.New("no input file")

// render processes opt.input through a fresh processor driven by store and
// writes the result to opt.output.
func render(fs afero.Fs, store *signalchain.Store, opt options) (report, error) {
	rep := report{firstClip: -1}
	if opt.input == "" {
		return rep, errNoInput
	}

	in, err := ir.Load(fs, opt.input)
	if err != nil {
		return rep, fmt.Errorf("read input: %w", err)
	}
	src := in.Channels[:min(len(in.Channels), core.MaxChannels)]
	if opt.channels == 1 && len(src) == 2 {
		src = [][]float64{downmix(src[0], src[1])}
	}

	var auto *automation
	if opt.script != "" {
		auto, err = loadAutomation(fs, opt.script)
		if err != nil {
			return rep, err
		}
		defer auto.Close()
	}

	cache, err := ir.NewCache(fs, signalchain.NumSlots)
	if err != nil {
		return rep, err
	}
	proc := signalchain.New(store,
		signalchain.WithTransport(signalchain.NewFixedTempo(opt.tempo)),
		signalchain.WithIRCache(cache),
	)
	for i, path := range opt.irs {
		if path == "" {
			continue
		}
		if err := proc.LoadIRFile(i, path); err != nil {
			return rep, err
		}
		proc.Slot(i).SetMuted(opt.muted[i])
	}

	cfg := core.ProcessorConfig{SampleRate: in.SampleRate, BlockSize: opt.block, Channels: opt.channels}
	// Both impulse responses are read and prepared here, concurrently.
	if err := proc.Prepare(cfg); err != nil {
		return rep, err
	}

	rep.sampleRate = in.SampleRate
	rep.inputFrames = in.Frames()
	rep.channels = opt.channels

	out := make([][]float64, opt.channels)
	buf := buffer.New(core.MaxChannels, opt.block)
	total := rep.inputFrames
	tailDone := !opt.tail

	for block, pos := 0, 0; pos < total; block++ {
		if auto != nil {
			if err := auto.apply(store, block, float64(pos)/in.SampleRate); err != nil {
				return rep, err
			}
		}

		n := min(opt.block, total-pos)
		buf.SetSize(len(src), n)
		for ch, samples := range src {
			dst := buf.Channel(ch)
			if pos < len(samples) {
				clear(dst[copy(dst, samples[pos:]):])
			} else {
				clear(dst)
			}
		}

		proc.Process(buf)
		if proc.ConsumeClip() {
			rep.clippedBlocks++
			if rep.firstClip < 0 {
				rep.firstClip = float64(pos) / in.SampleRate
			}
		}

		levels := proc.Levels()
		for ch := range out {
			data := buf.Channel(min(ch, buf.Channels()-1))
			out[ch] = append(out[ch], data...)
			rep.inputPeak = max(rep.inputPeak, levels.Input[ch])
			rep.outputPeak = max(rep.outputPeak, levels.Output[ch])
		}
		pos += n

		if pos == total && !tailDone {
			tailDone = true
			tail := min(proc.TailSeconds(), maxTailSeconds)
			total += int(math.Ceil(tail * in.SampleRate))
		}
	}
	rep.outputFrames = len(out[0])

	if opt.bitDepth < 32 {
		if err := quantize(out, opt); err != nil {
			return rep, err
		}
	}

	if err := writeOutput(fs, opt.output, int(in.SampleRate), opt.bitDepth, out); err != nil {
		return rep, err
	}

	return rep, nil
}

func writeOutput(fs afero.Fs, path string, sampleRate, bitDepth int, data [][]float64) (err error) {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	if err := ir.Encode(f, sampleRate, bitDepth, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// quantize reduces every channel to opt.bitDepth with its own quantizer.
func quantize(data [][]float64, opt options) error {
	for _, ch := range data {
		q, err := dither.New(opt.bitDepth, dither.WithType(opt.dither), dither.WithShaping(opt.shaping))
		if err != nil {
			return err
		}
		q.Process(ch)
	}
	return nil
}

func downmix(left, right []float64) []float64 {
	n := min(len(left), len(right))
	out := make([]float64, n)
	vecmath.AddMulBlock(out, left[:n], right[:n], 0.5)
	return out
}
