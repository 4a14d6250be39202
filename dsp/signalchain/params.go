package signalchain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-irfx/dsp/core"
	"github.com/cwbudde/algo-irfx/dsp/delay"
	"github.com/cwbudde/algo-irfx/dsp/saturation"
	"github.com/cwbudde/algo-irfx/dsp/tonestack"
)

// ParamID identifies one control of the signal chain.
type ParamID int

const (
	ParamIRLowCut ParamID = iota
	ParamIRHighCut
	ParamIR1Level
	ParamIR2Level
	ParamIR1Pan
	ParamIR2Pan
	ParamEQLowGain
	ParamEQMidGain
	ParamEQMidFreq
	ParamEQHighGain
	ParamDrive
	ParamSaturationMix
	ParamDelayMix
	ParamDelayFeedback
	ParamDelayTime
	ParamInputGain
	ParamOutputGain

	// Discrete controls. Everything above is continuous and smoothed.
	ParamIRBypass
	ParamEQBypass
	ParamSaturationBypass
	ParamSaturationMode
	ParamDelayBypass
	ParamDelayMode
	ParamDelaySync
	ParamDelayNote
	ParamDelayTopology
	ParamBypass
	ParamOutputMode

	NumParams = int(ParamOutputMode) + 1
)

// Kind is the value type of a parameter.
type Kind int

const (
	KindFloat Kind = iota
	KindBool
	KindChoice
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindChoice:
		return "choice"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Output mode choices.
const (
	OutputMono   = 0
	OutputStereo = 1
)

// Spec describes a parameter's name, unit, range and default. Bool
// parameters range over 0 and 1; choice parameters over the indices of
// Choices.
type Spec struct {
	Name    string
	Unit    string
	Kind    Kind
	Min     float64
	Max     float64
	Default float64
	Choices []string
}

// ErrUnknownParam is returned for names not in the registry.
var ErrUnknownParam = errors.New("signalchain: unknown parameter")

var specs = [NumParams]Spec{
	ParamIRLowCut:      floatSpec("IRLowCut", "Hz", tonestack.MinLowCutHz, tonestack.MaxLowCutHz, tonestack.DefaultLowCutHz),
	ParamIRHighCut:     floatSpec("IRHighCut", "Hz", tonestack.MinHighCutHz, tonestack.MaxHighCutHz, tonestack.DefaultHighCutHz),
	ParamIR1Level:      floatSpec("IR1Level", "dB", -60, 0, 0),
	ParamIR2Level:      floatSpec("IR2Level", "dB", -60, 0, 0),
	ParamIR1Pan:        floatSpec("IR1Pan", "%", -100, 100, 0),
	ParamIR2Pan:        floatSpec("IR2Pan", "%", -100, 100, 0),
	ParamEQLowGain:     floatSpec("EQLowGain", "dB", -tonestack.MaxGainDB, tonestack.MaxGainDB, 0),
	ParamEQMidGain:     floatSpec("EQMidGain", "dB", -tonestack.MaxGainDB, tonestack.MaxGainDB, 0),
	ParamEQMidFreq:     floatSpec("EQMidFreq", "Hz", tonestack.MinMidHz, tonestack.MaxMidHz, tonestack.DefaultMidHz),
	ParamEQHighGain:    floatSpec("EQHighGain", "dB", -tonestack.MaxGainDB, tonestack.MaxGainDB, 0),
	ParamDrive:         floatSpec("SaturationDrive", "", 0, saturation.MaxDrive, 6),
	ParamSaturationMix: floatSpec("SaturationMix", "%", 0, 100, 0),
	ParamDelayMix:      floatSpec("DelayMix", "%", 0, 100, 0),
	ParamDelayFeedback: floatSpec("DelayFeedback", "%", 0, 100, 30),
	ParamDelayTime:     floatSpec("DelayTime", "ms", delay.MinTimeMs, delay.MaxTimeMs, 375),
	ParamInputGain:     floatSpec("InputGain", "dB", -60, 12, 0),
	ParamOutputGain:    floatSpec("OutputGain", "dB", -60, 12, 0),

	ParamIRBypass:         boolSpec("IRBypass"),
	ParamEQBypass:         boolSpec("EQBypass"),
	ParamSaturationBypass: boolSpec("DistBypass"),
	ParamSaturationMode: choiceSpec("SaturationMode", int(saturation.TypeA),
		saturation.TypeA.String(), saturation.TypeB.String(), saturation.TypeC.String()),
	ParamDelayBypass: boolSpec("DelayBypass"),
	ParamDelayMode: choiceSpec("DelayMode", int(delay.Digital),
		delay.Digital.String(), delay.Tape.String()),
	ParamDelaySync:     boolSpec("DelaySync"),
	ParamDelayNote:     choiceSpec("DelayNote", int(delay.Quarter), subdivisionLabels()...),
	ParamDelayTopology: choiceSpec("DelayTopology", 0, delay.PingPong.String(), delay.Stereo.String()),
	ParamBypass:        boolSpec("PluginBypass"),
	ParamOutputMode:    choiceSpec("OutputMode", OutputStereo, "Mono", "Stereo"),
}

func floatSpec(name, unit string, lo, hi, def float64) Spec {
	return Spec{Name: name, Unit: unit, Kind: KindFloat, Min: lo, Max: hi, Default: def}
}

func boolSpec(name string) Spec {
	return Spec{Name: name, Kind: KindBool, Min: 0, Max: 1}
}

func choiceSpec(name string, def int, choices ...string) Spec {
	return Spec{
		Name:    name,
		Kind:    KindChoice,
		Min:     0,
		Max:     float64(len(choices) - 1),
		Default: float64(def),
		Choices: choices,
	}
}

func subdivisionLabels() []string {
	labels := make([]string, delay.NumSubdivisions)
	for i := range labels {
		labels[i] = delay.Subdivision(i).String()
	}
	return labels
}

// Valid reports whether id is a known parameter.
func (id ParamID) Valid() bool {
	return id >= 0 && int(id) < NumParams
}

// Spec returns the parameter description. Unknown IDs yield the zero Spec.
func (id ParamID) Spec() Spec {
	if !id.Valid() {
		return Spec{}
	}
	return specs[id]
}

// String returns the parameter name.
func (id ParamID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("ParamID(%d)", int(id))
	}
	return specs[id].Name
}

// Smoothed reports whether the parameter is ramped per block.
func (id ParamID) Smoothed() bool {
	return id.Valid() && specs[id].Kind == KindFloat
}

// Clamp maps v into the parameter's domain. NaN and infinities become the
// default; bools snap to 0 or 1 and choices to the nearest index.
func (s Spec) Clamp(v float64) float64 {
	v = core.Sanitize(v, s.Default)
	switch s.Kind {
	case KindBool:
		if v >= 0.5 {
			return 1
		}
		return 0
	case KindChoice:
		return core.Clamp(math.Round(v), s.Min, s.Max)
	default:
		return core.Clamp(v, s.Min, s.Max)
	}
}

// Parse converts a textual value. Bools accept true/false/on/off/1/0;
// choices accept a label (case-insensitive) or an index.
func (s Spec) Parse(text string) (float64, error) {
	text = strings.TrimSpace(text)
	switch s.Kind {
	case KindBool:
		switch strings.ToLower(text) {
		case "1", "true", "on", "yes":
			return 1, nil
		case "0", "false", "off", "no":
			return 0, nil
		}
	case KindChoice:
		for i, c := range s.Choices {
			if strings.EqualFold(text, c) {
				return float64(i), nil
			}
		}
	}

	var v float64
	if _, err := fmt.Sscan(text, &v); err != nil {
		return 0, fmt.Errorf("signalchain: %s: invalid value %q", s.Name, text)
	}
	return s.Clamp(v), nil
}

// Format renders v for display.
func (s Spec) Format(v float64) string {
	v = s.Clamp(v)
	switch s.Kind {
	case KindBool:
		if v != 0 {
			return "on"
		}
		return "off"
	case KindChoice:
		return s.Choices[int(v)]
	default:
		if s.Unit == "" {
			return fmt.Sprintf("%.2f", v)
		}
		return fmt.Sprintf("%.2f %s", v, s.Unit)
	}
}

// Lookup finds a parameter by name, case-insensitively.
func Lookup(name string) (ParamID, error) {
	for i := range specs {
		if strings.EqualFold(name, specs[i].Name) {
			return ParamID(i), nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrUnknownParam, name)
}

// Params returns every parameter ID in registry order.
func Params() []ParamID {
	ids := make([]ParamID, NumParams)
	for i := range ids {
		ids[i] = ParamID(i)
	}
	return ids
}
