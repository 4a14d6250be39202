// Command irfxrender runs a WAV file through the effect chain offline.
//
// Usage:
//
//	irfxrender [flags] input.wav output.wav
//
// Every chain parameter has a flag named after it in lower case, e.g.
// -delaytime 250 or -saturationmode typec. Choice parameters accept their
// label or index; bypass and sync flags accept on/off.
//
// Examples:
//
//	irfxrender -ir1 cab.wav guitar.wav out.wav
//	irfxrender -ir1 a.wav -ir2 b.wav -ir2pan 60 -delaymix 25 in.wav out.wav
//	irfxrender -script sweep.lua -bits 32 in.wav out.wav
//	irfxrender -bits 16 -dither tpdf -shaping 9fc in.wav out.wav
//	irfxrender -list
//	irfxrender -info -ir1 cab.wav -ir2 room.wav
//
// An automation script defines automate(block, seconds) and returns a
// table of parameter values to apply before that block:
//
//	function automate(block, seconds)
//	  return { DelayMix = math.min(100, seconds * 20) }
//	end
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"

	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/dither"
	"github.com/cwbudde/algo-irfx/dsp/ir"
	"github.com/cwbudde/algo-irfx/dsp/signalchain"
)

func main() {
	os.Exit(run(os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr))
}

func run(args []string, fs afero.Fs, stdout, stderr io.Writer) int {
	store := signalchain.NewStore()
	opt := defaultOptions()

	flags := flag.NewFlagSet("irfxrender", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opt.irs[0], "ir1", "", "impulse response WAV for slot 1")
	flags.StringVar(&opt.irs[1], "ir2", "", "impulse response WAV for slot 2")
	flags.BoolVar(&opt.muted[0], "mute1", false, "mute IR slot 1")
	flags.BoolVar(&opt.muted[1], "mute2", false, "mute IR slot 2")
	flags.StringVar(&opt.script, "script", "", "Lua automation script")
	flags.IntVar(&opt.bitDepth, "bits", opt.bitDepth, "output bit depth (16, 24 or 32 float)")
	flags.Func("dither", "dither noise for 16/24-bit output: none, rect or tpdf (default tpdf)", func(v string) (err error) {
		opt.dither, err = dither.ParseType(v)
		return err
	})
	flags.Func("shaping", "noise shaping for 16/24-bit output: none, efb, 2sc or 9fc (default none)", func(v string) (err error) {
		opt.shaping, err = dither.ParseShaping(v)
		return err
	})
	flags.IntVar(&opt.block, "block", opt.block, "processing block size in samples")
	flags.IntVar(&opt.channels, "channels", opt.channels, "output channels (1 or 2)")
	flags.Float64Var(&opt.tempo, "bpm", opt.tempo, "host tempo for synced delays")
	flags.BoolVar(&opt.tail, "tail", opt.tail, "render the IR and delay tail after the input ends")
	list := flags.Bool("list", false, "list parameters with ranges and defaults")
	info := flags.Bool("info", false, "print an analysis of the -ir1/-ir2 files and exit")

	for _, id := range signalchain.Params() {
		spec := id.Spec()
		flags.Func(strings.ToLower(spec.Name), paramUsage(spec), func(v string) error {
			return store.SetText(spec.Name, v)
		})
	}

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: irfxrender [flags] input.wav output.wav\n\n")
		fmt.Fprintf(stderr, "Runs a WAV file through the IR loader, tone stack, saturation and delay.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *list {
		printParams(stdout)
		return 0
	}

	if *info {
		if err := printIRInfo(fs, stdout, opt.irs[:]); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	if flags.NArg() != 2 {
		flags.Usage()
		return 2
	}
	opt.input, opt.output = flags.Arg(0), flags.Arg(1)

	rep, err := render(fs, store, opt)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	printReport(stderr, opt, rep)
	return 0
}

func paramUsage(s signalchain.Spec) string {
	switch s.Kind {
	case signalchain.KindBool:
		return fmt.Sprintf("%s (on/off, default %s)", s.Name, s.Format(s.Default))
	case signalchain.KindChoice:
		return fmt.Sprintf("%s (%s, default %s)", s.Name, strings.Join(s.Choices, " | "), s.Format(s.Default))
	default:
		return fmt.Sprintf("%s [%g, %g] %s (default %g)", s.Name, s.Min, s.Max, s.Unit, s.Default)
	}
}

func printParams(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tRANGE\tDEFAULT")
	for _, id := range signalchain.Params() {
		s := id.Spec()
		rng := fmt.Sprintf("%g..%g %s", s.Min, s.Max, s.Unit)
		if s.Kind == signalchain.KindChoice {
			rng = strings.Join(s.Choices, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", strings.ToLower(s.Name), s.Kind, strings.TrimSpace(rng), s.Format(s.Default))
	}
	tw.Flush()
}

func printIRInfo(fs afero.Fs, w io.Writer, paths []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tFILE\tRATE\tCH\tLENGTH\tPEAK\tCENTRE\tDECAY")
	for i, path := range paths {
		if path == "" {
			continue
		}
		resp, err := ir.Load(fs, path)
		if err != nil {
			return err
		}
		a, err := resp.Analyze()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(tw, "%d\t%s\t%.0f\t%d\t%.1f ms\t%.1f dB @ %d\t%.1f ms\t%.1f ms\n",
			i+1, path, resp.SampleRate, a.Channels, a.Duration*1000, a.PeakDB, a.PeakIndex, a.CenterTime*1000, a.DecayTime*1000)
	}
	return tw.Flush()
}

func printReport(w io.Writer, opt options, rep report) {
	fmt.Fprintf(w, "%s -> %s\n", opt.input, opt.output)
	fmt.Fprintf(w, "  rate      %.0f Hz, %d channel(s)\n", rep.sampleRate, rep.channels)
	fmt.Fprintf(w, "  frames    %d in, %d out (%.2f s)\n", rep.inputFrames, rep.outputFrames, float64(rep.outputFrames)/rep.sampleRate)
	fmt.Fprintf(w, "  peak      %.2f dBFS in, %.2f dBFS out\n", dbfs(rep.inputPeak), dbfs(rep.outputPeak))
	if rep.clippedBlocks > 0 {
		fmt.Fprintf(w, "  clipping  %d block(s), first at %.3f s\n", rep.clippedBlocks, rep.firstClip)
	}
}

func dbfs(peak float64) float64 {
	if peak <= 0 {
		return -999
	}
	return core.LinearToDB(peak)
}
