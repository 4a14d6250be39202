// Command irfxplay plays a looped WAV file or a test tone through the
// effect chain on the default audio device.
//
// Usage:
//
//	irfxplay [flags] [input.wav]
//
// Parameter flags are the same as for irfxrender. Without an input file a
// plucked sawtooth is played. Stop with Ctrl-C.
//
// Examples:
//
//	irfxplay -ir1 cab.wav riff.wav
//	irfxplay -ir1 a.wav -ir2 b.wav -delaymix 30 -delaysync on
//	irfxplay -tone 82.4 -saturationmix 100 -saturationmode typec
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/spf13/afero"

	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/ir"
	"github.com/cwbudde/algo-irfx/dsp/signalchain"
)

type options struct {
	input    string
	irs      [signalchain.NumSlots]string
	rate     int
	block    int
	channels int
	toneHz   float64
	tempo    float64
	seconds  float64
	latency  time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, fs afero.Fs, stdout, stderr io.Writer) int {
	store := signalchain.NewStore()
	opt := options{rate: 48000, block: 256, channels: 2, toneHz: 110, tempo: 120, latency: 50 * time.Millisecond}

	flags := flag.NewFlagSet("irfxplay", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opt.irs[0], "ir1", "", "impulse response WAV for slot 1")
	flags.StringVar(&opt.irs[1], "ir2", "", "impulse response WAV for slot 2")
	flags.IntVar(&opt.rate, "rate", opt.rate, "device sample rate when playing the test tone")
	flags.IntVar(&opt.block, "block", opt.block, "processing block size in samples")
	flags.IntVar(&opt.channels, "channels", opt.channels, "output channels (1 or 2)")
	flags.Float64Var(&opt.toneHz, "tone", opt.toneHz, "test tone frequency in Hz")
	flags.Float64Var(&opt.tempo, "bpm", opt.tempo, "host tempo for synced delays")
	flags.Float64Var(&opt.seconds, "seconds", 0, "stop after this many seconds (0 plays until interrupted)")
	flags.DurationVar(&opt.latency, "latency", opt.latency, "device buffer duration")

	for _, id := range signalchain.Params() {
		spec := id.Spec()
		flags.Func(strings.ToLower(spec.Name), spec.Name, func(v string) error {
			return store.SetText(spec.Name, v)
		})
	}

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: irfxplay [flags] [input.wav]\n\nFlags:\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() > 1 {
		flags.Usage()
		return 2
	}
	opt.input = flags.Arg(0)

	if err := play(ctx, fs, store, opt, stdout); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// setup builds the processor and input source for opt. The sample rate of
// an input file overrides opt.rate.
func setup(fs afero.Fs, store *signalchain.Store, opt options) (*stream, int, error) {
	rate := float64(opt.rate)
	var src source
	if opt.input != "" {
		in, err := ir.Load(fs, opt.input)
		if err != nil {
			return nil, 0, fmt.Errorf("read input: %w", err)
		}
		if src, err = newLoop(in.Channels); err != nil {
			return nil, 0, err
		}
		rate = in.SampleRate
	} else {
		src = newTone(opt.toneHz, rate, 0.5)
	}

	cache, err := ir.NewCache(fs, signalchain.NumSlots)
	if err != nil {
		return nil, 0, err
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
			return nil, 0, err
		}
	}

	cfg := core.ProcessorConfig{SampleRate: rate, BlockSize: opt.block, Channels: opt.channels}
	if err := proc.Prepare(cfg); err != nil {
		return nil, 0, err
	}

	return newStream(proc, src, opt.block, opt.channels), int(rate), nil
}

func play(ctx context.Context, fs afero.Fs, store *signalchain.Store, opt options, stdout io.Writer) error {
	s, rate, err := setup(fs, store, opt)
	if err != nil {
		return err
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: opt.channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   opt.latency,
	})
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	<-ready

	if opt.seconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opt.seconds*float64(time.Second)))
		defer cancel()
	}

	player := otoCtx.NewPlayer(s)
	player.Play()
	defer player.Close()

	fmt.Fprintf(stdout, "playing at %d Hz, %d channel(s)\n", rate, opt.channels)
	runMeter(ctx, stdout, int(os.Stdout.Fd()), s)

	if err := otoCtx.Err(); err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	return nil
}
