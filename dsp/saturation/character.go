package saturation

import (
	"fmt"
	"strings"
)

// Character selects the waveshaping curve.
type Character int

const (
	// TypeA is tanh(x + 0.1x^3): gentle cubic pre-emphasis.
	TypeA Character = iota
	// TypeB is tanh(x): plain symmetric soft clip.
	TypeB
	// TypeC is tanh(x + 0.3x^3): stronger cubic term, more upper harmonics.
	TypeC

	numCharacters
)

// Voicing aliases.
const (
	Warm  = TypeA
	Clean = TypeB
	Bite  = TypeC
)

type characterInfo struct {
	name        string
	alias       string
	cubic       float64
	attenuation float64
}

var characters = [numCharacters]characterInfo{
	TypeA: {name: "TypeA", alias: "warm", cubic: 0.1, attenuation: 0.7},
	TypeB: {name: "TypeB", alias: "clean", cubic: 0, attenuation: 0.7},
	TypeC: {name: "TypeC", alias: "bite", cubic: 0.3, attenuation: 0.7},
}

// Valid reports whether c names a known character.
func (c Character) Valid() bool {
	return c >= 0 && c < numCharacters
}

// String returns the character name.
func (c Character) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Character(%d)", int(c))
	}
	return characters[c].name
}

// Attenuation is the fixed output scale that compensates the loudness
// gained by clipping.
func (c Character) Attenuation() float64 {
	if !c.Valid() {
		return 1
	}
	return characters[c].attenuation
}

// Shape applies the raw curve without attenuation.
func (c Character) Shape(x float64) float64 {
	if !c.Valid() {
		return mathTanh(x)
	}
	if k := characters[c].cubic; k != 0 {
		return mathTanh(x + k*x*x*x)
	}
	return mathTanh(x)
}

// ParseCharacter accepts a type name ("TypeB") or voicing alias ("clean"),
// case-insensitively.
func ParseCharacter(s string) (Character, error) {
	for i, info := range characters {
		if strings.EqualFold(s, info.name) || strings.EqualFold(s, info.alias) {
			return Character(i), nil
		}
	}
	return TypeA, fmt.Errorf("saturation: unknown character %q", s)
}
