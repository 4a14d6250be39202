package signalchain

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-irfx/dsp/buffer"
	"github.com/cwbudde/algo-irfx/dsp/conv"
	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/delay"
	"github.com/cwbudde/algo-irfx/dsp/ir"
	"github.com/cwbudde/algo-irfx/dsp/pan"
	"github.com/cwbudde/algo-irfx/dsp/saturation"
	"github.com/cwbudde/algo-irfx/dsp/smooth"
	"github.com/cwbudde/algo-irfx/dsp/tonestack"
)

// Fixed makeup and mute gains of the impulse-response stage.
const (
	DualPathGainDB   = 3.0
	SinglePathGainDB = 9.0
	MutedGainDB      = -100.0
)

// ErrInvalidSlot is returned for slot indices outside [0, NumSlots).
var ErrInvalidSlot = errors.New("signalchain: invalid IR slot")

// Option configures a Processor at construction.
type Option func(*Processor)

// WithTransport sets the tempo source for synced delays.
func WithTransport(t Transport) Option {
	return func(p *Processor) { p.transport = t }
}

// WithRampSeconds sets the parameter smoothing time.
func WithRampSeconds(seconds float64) Option {
	return func(p *Processor) {
		if seconds >= 0 && !math.IsInf(seconds, 0) {
			p.rampSeconds = seconds
		}
	}
}

// WithIRCache sets the cache LoadIRFile reads through. Without it a cache
// over the OS file system is created on first use.
func WithIRCache(c *ir.Cache) Option {
	return func(p *Processor) { p.cache = c }
}

// WithIRPrepareOptions sets the options LoadIR uses to prepare responses.
func WithIRPrepareOptions(opts ...ir.PrepareOption) Option {
	return func(p *Processor) { p.irOpts = opts }
}

// WithPartitionSize sets the convolution partition size.
func WithPartitionSize(n int) Option {
	return func(p *Processor) {
		p.convOpts = []conv.PartitionedOption{conv.WithPartitionSize(n)}
	}
}

// Levels are per-channel peak magnitudes of the most recent Process call.
type Levels struct {
	Input  [core.MaxChannels]float64
	Output [core.MaxChannels]float64
}

type irSource struct {
	path string
	resp *ir.ImpulseResponse
}

func (s irSource) empty() bool { return s.path == "" && s.resp == nil }

// Processor runs the complete chain: input gain, impulse-response mixing
// and cut filters, tone stack, saturation, delay and output gain.
//
// Process belongs to the audio goroutine and must not run concurrently
// with Prepare. LoadIR, LoadIRFile, UnloadIR, the slot controls and the
// Consume/Levels readers may be called from any goroutine.
type Processor struct {
	params      ParamSource
	transport   Transport
	rampSeconds float64
	irOpts      []ir.PrepareOption
	convOpts    []conv.PartitionedOption

	// Control side.
	mu      sync.Mutex
	rate    float64
	cache   *ir.Cache
	sources [NumSlots]irSource

	// Audio side.
	cfg       core.ProcessorConfig
	prepared  bool
	smoothers *smooth.Bank
	block     [NumParams]float64
	slots     [NumSlots]IRSlot
	cut       *tonestack.CutFilters
	tone      *tonestack.ToneStack
	sat       *saturation.Engine
	echo      *delay.Engine
	view      *buffer.Buffer
	scratch   *buffer.Buffer

	clip      atomic.Bool
	inputClip atomic.Bool
	levels    [2 * core.MaxChannels]atomic.Uint64
}

// New returns a processor reading controls from params. A nil params uses
// a fresh Store with default values.
func New(params ParamSource, opts ...Option) *Processor {
	if params == nil {
		params = NewStore()
	}
	p := &Processor{
		params:      params,
		rampSeconds: smooth.DefaultRampSeconds,
		smoothers:   smooth.NewBank(numSmoothed),
		cut:         tonestack.NewCutFilters(),
		tone:        tonestack.New(),
		sat:         saturation.New(),
		echo:        delay.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// numSmoothed counts the continuous parameters, which come first.
const numSmoothed = int(ParamOutputGain) + 1

// Prepare configures every stage for cfg, snaps smoothers to the current
// control values and builds convolvers for any impulse responses loaded
// before (or at a different rate than) this call. The processor is usable
// even when an impulse response fails to build; that slot is left empty
// and the error returned.
func (p *Processor) Prepare(cfg core.ProcessorConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("signalchain: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	sr, chs := cfg.SampleRate, cfg.Channels
	stages := []struct {
		name    string
		prepare func(float64, int) error
	}{
		{"cut filters", p.cut.Prepare},
		{"tone stack", p.tone.Prepare},
		{"saturation", p.sat.Prepare},
		{"delay", p.echo.Prepare},
	}
	for _, s := range stages {
		if err := s.prepare(sr, chs); err != nil {
			return fmt.Errorf("signalchain: prepare %s: %w", s.name, err)
		}
	}

	p.cfg = cfg
	p.view = buffer.NewView(chs)
	p.scratch = buffer.New(core.MaxChannels, cfg.BlockSize)

	for i := range numSmoothed {
		id := ParamID(i)
		p.smoothers.At(i).SetCurrentAndTarget(specs[i].Clamp(p.params.Value(id)))
	}
	p.smoothers.ResetAll(sr, p.rampSeconds)

	p.clip.Store(false)
	p.inputClip.Store(false)

	convs, err := p.buildAll(sr)
	for i := range p.slots {
		p.slots[i].install(convs[i])
	}

	p.rate = sr
	p.prepared = true

	return err
}

// buildAll prepares every non-empty source for sampleRate concurrently.
func (p *Processor) buildAll(sampleRate float64) ([NumSlots]*ir.Convolver, error) {
	var convs [NumSlots]*ir.Convolver
	var g errgroup.Group

	for i, src := range p.sources {
		if src.empty() {
			continue
		}
		g.Go(func() error {
			c, err := p.build(src, sampleRate)
			if err != nil {
				return fmt.Errorf("signalchain: IR slot %d: %w", i+1, err)
			}
			convs[i] = c
			return nil
		})
	}

	return convs, g.Wait()
}

func (p *Processor) build(src irSource, sampleRate float64) (*ir.Convolver, error) {
	var (
		resp *ir.ImpulseResponse
		err  error
	)
	if src.path != "" {
		resp, err = p.cache.Get(src.path, sampleRate)
	} else {
		resp, err = src.resp.Prepare(sampleRate, p.irOpts...)
	}
	if err != nil {
		return nil, err
	}
	return ir.NewConvolver(resp, p.convOpts...)
}

// LoadIR sets the impulse response of slot. resp is resampled to the
// engine rate and handed to the audio goroutine at the next block. Before
// Prepare the response is only remembered and built by Prepare.
func (p *Processor) LoadIR(slot int, resp *ir.ImpulseResponse) error {
	if resp == nil || resp.Frames() == 0 {
		return ir.ErrEmptyImpulseResponse
	}
	return p.load(slot, irSource{resp: resp})
}

// LoadIRFile is LoadIR for a WAV file read through the processor's cache.
func (p *Processor) LoadIRFile(slot int, path string) error {
	if path == "" {
		return fmt.Errorf("signalchain: empty IR path")
	}

	p.mu.Lock()
	if p.cache == nil {
		c, err := ir.NewCache(afero.NewOsFs(), ir.DefaultCacheSize, p.irOpts...)
		if err != nil {
			p.mu.Unlock()
			return err
		}
		p.cache = c
	}
	p.mu.Unlock()

	return p.load(slot, irSource{path: path})
}

func (p *Processor) load(slot int, src irSource) error {
	if slot < 0 || slot >= NumSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rate > 0 {
		c, err := p.build(src, p.rate)
		if err != nil {
			return fmt.Errorf("signalchain: IR slot %d: %w", slot+1, err)
		}
		p.slots[slot].Load(c)
	}
	p.sources[slot] = src

	return nil
}

// UnloadIR empties slot.
func (p *Processor) UnloadIR(slot int) error {
	if slot < 0 || slot >= NumSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	p.mu.Lock()
	p.sources[slot] = irSource{}
	p.mu.Unlock()

	p.slots[slot].Unload()
	return nil
}

// Slot returns the control handle of slot i, or nil if i is out of range.
func (p *Processor) Slot(i int) *IRSlot {
	if i < 0 || i >= NumSlots {
		return nil
	}
	return &p.slots[i]
}

// Config returns the configuration of the last successful Prepare.
func (p *Processor) Config() core.ProcessorConfig { return p.cfg }

// Latency is zero: every stage, convolution included, is sample-aligned.
func (p *Processor) Latency() int { return 0 }

// TailSeconds estimates how long output continues after the input stops.
// It reads audio-side state and must not run concurrently with Process.
func (p *Processor) TailSeconds() float64 {
	if !p.prepared {
		return 0
	}
	tail := 0.0
	for i := range p.slots {
		if c := p.slots[i].active; c != nil {
			tail = max(tail, float64(c.Frames())/p.cfg.SampleRate)
		}
	}
	return tail + p.echo.TailSeconds()
}

// ConsumeClip reports whether any output sample exceeded 1.0 since the
// previous call, and clears the flag.
func (p *Processor) ConsumeClip() bool { return p.clip.Swap(false) }

// ConsumeInputClip is ConsumeClip for the input.
func (p *Processor) ConsumeInputClip() bool { return p.inputClip.Swap(false) }

// Levels returns the peaks of the most recent Process call.
func (p *Processor) Levels() Levels {
	var l Levels
	for ch := range core.MaxChannels {
		l.Input[ch] = math.Float64frombits(p.levels[ch].Load())
		l.Output[ch] = math.Float64frombits(p.levels[core.MaxChannels+ch].Load())
	}
	return l
}

func (p *Processor) storeLevels(offset int, buf *buffer.Buffer) {
	for ch := range core.MaxChannels {
		peak := buf.PeakChannel(ch)
		if ch == 1 && buf.Channels() == 1 {
			peak = buf.PeakChannel(0)
		}
		p.levels[offset+ch].Store(math.Float64bits(peak))
	}
}

// Process runs the chain over buf in place. A mono buffer with room for a
// second channel becomes stereo when prepared for two channels. Buffers
// longer than the prepared block size are processed in block-size chunks.
// It never allocates and does nothing before Prepare.
func (p *Processor) Process(buf *buffer.Buffer) {
	if !p.prepared || buf == nil || buf.Frames() == 0 {
		return
	}
	if p.cfg.Stereo() {
		buf.ExpandToStereo()
	}

	p.storeLevels(0, buf)
	if buf.ExceedsMagnitude(1) {
		p.inputClip.Store(true)
	}

	n := buf.Frames()
	for start := 0; start < n; start += p.cfg.BlockSize {
		buf.Window(p.view, start, min(start+p.cfg.BlockSize, n))
		p.processBlock(p.view)
	}

	p.storeLevels(core.MaxChannels, buf)
}

func (p *Processor) processBlock(b *buffer.Buffer) {
	p.updateParams(b.Frames())

	if p.flag(ParamBypass) {
		return
	}
	stereoOut := p.choice(ParamOutputMode) == OutputStereo

	b.ApplyGain(core.DBToLinear(p.block[ParamInputGain]))

	if !p.flag(ParamIRBypass) {
		if !p.processIR(b, stereoOut) {
			return
		}
		p.cut.SetCutoffs(p.block[ParamIRLowCut], p.block[ParamIRHighCut])
		p.cut.Process(b)
	}

	if !p.flag(ParamEQBypass) {
		p.tone.SetSettings(tonestack.Settings{
			LowDB:  p.block[ParamEQLowGain],
			MidDB:  p.block[ParamEQMidGain],
			MidHz:  p.block[ParamEQMidFreq],
			HighDB: p.block[ParamEQHighGain],
		})
		p.tone.Process(b)
	}

	drive := p.block[ParamDrive]
	if p.flag(ParamSaturationBypass) {
		drive = 0
	}
	p.sat.SetDrive(drive)
	p.sat.SetMix(p.block[ParamSaturationMix] * 0.01)
	p.sat.SetCharacter(saturation.Character(p.choice(ParamSaturationMode)))
	p.sat.Process(b)

	if !p.flag(ParamDelayBypass) {
		p.configureDelay(stereoOut)
		p.echo.Process(b)
	}

	b.ApplyGain(core.DBToLinear(p.block[ParamOutputGain]))

	if b.ExceedsMagnitude(1) {
		p.clip.Store(true)
	}
}

// updateParams reads every control once and advances the smoothers by n.
func (p *Processor) updateParams(n int) {
	for i := range p.block {
		v := specs[i].Clamp(p.params.Value(ParamID(i)))
		if i < numSmoothed {
			s := p.smoothers.At(i)
			s.SetTarget(v)
			s.Advance(n)
			v = s.Current()
		}
		p.block[i] = v
	}
}

func (p *Processor) flag(id ParamID) bool { return p.block[id] >= 0.5 }

func (p *Processor) choice(id ParamID) int { return int(p.block[id]) }

// processIR mixes the two impulse-response paths into b. It returns false
// when both paths are muted, in which case b is silenced and the rest of
// the chain is skipped.
func (p *Processor) processIR(b *buffer.Buffer, stereoOut bool) bool {
	c1 := p.slots[0].acquire()
	c2 := p.slots[1].acquire()
	muted1, muted2 := p.slots[0].Muted(), p.slots[1].Muted()
	use1 := c1 != nil && !muted1
	use2 := c2 != nil && !muted2

	switch {
	case use1 && use2:
		p.scratch.SetSize(b.Channels(), b.Frames())
		p.scratch.CopyFrom(b)
		p.irPath(b, c1, ParamIR1Level, ParamIR1Pan, stereoOut)
		p.irPath(p.scratch, c2, ParamIR2Level, ParamIR2Pan, stereoOut)
		b.AddFrom(p.scratch)
		b.ApplyGain(core.DBToLinear(DualPathGainDB))
	case use1:
		p.irPath(b, c1, ParamIR1Level, ParamIR1Pan, stereoOut)
		b.ApplyGain(core.DBToLinear(SinglePathGainDB))
	case use2:
		p.irPath(b, c2, ParamIR2Level, ParamIR2Pan, stereoOut)
		b.ApplyGain(core.DBToLinear(SinglePathGainDB))
	case muted1 && muted2:
		b.ApplyGain(core.DBToLinear(MutedGainDB))
		return false
	}

	return true
}

func (p *Processor) irPath(b *buffer.Buffer, c *ir.Convolver, level, panID ParamID, stereoOut bool) {
	b.ApplyGain(core.DBToLinear(p.block[level]))
	c.Process(b)

	position := 0.0
	if stereoOut {
		position = p.block[panID] * 0.01
	}
	if !pan.Apply(b, position) {
		// No room for a second channel: keep the left gain so mono and
		// stereo paths sum at the same level.
		left, _ := pan.Gains(position)
		b.ApplyChannelGain(0, left)
	}
}

var delayTopologies = [...]delay.Topology{delay.PingPong, delay.Stereo}

func (p *Processor) configureDelay(stereoOut bool) {
	e := p.echo
	e.SetFeedback(p.block[ParamDelayFeedback] * 0.01)
	e.SetMix(p.block[ParamDelayMix] * 0.01)
	e.SetMode(delay.Mode(p.choice(ParamDelayMode)))

	synced := p.flag(ParamDelaySync)
	e.SetSyncEnabled(synced)
	if synced {
		e.SetSubdivision(delay.Subdivision(p.choice(ParamDelayNote)))
	} else {
		e.SetTimeMs(p.block[ParamDelayTime])
	}
	e.SetTempo(hostTempo(p.transport))

	topology := delay.Mono
	if stereoOut {
		topology = delayTopologies[p.choice(ParamDelayTopology)]
	}
	e.SetTopology(topology)
}
