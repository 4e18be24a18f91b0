// Package components defines ECS components for the lab engine.
package components

import "fmt"

// Species distinguishes predators from prey.
type Species uint8

const (
	SpeciesPredator Species = iota
	SpeciesPrey
)

// String returns the lowercase species name used in logs and exports.
func (s Species) String() string {
	switch s {
	case SpeciesPredator:
		return "predator"
	case SpeciesPrey:
		return "prey"
	}
	return fmt.Sprintf("species(%d)", uint8(s))
}

// MarshalText encodes the species by name.
func (s Species) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a species name.
func (s *Species) UnmarshalText(text []byte) error {
	switch string(text) {
	case "predator":
		*s = SpeciesPredator
	case "prey":
		*s = SpeciesPrey
	default:
		return fmt.Errorf("unknown species %q", text)
	}
	return nil
}

// Animal is the single component every animal entity carries.
// Satiety counts rounds left until starvation and is only meaningful
// for predators; prey keep it at zero.
type Animal struct {
	Species    Species `json:"species"`
	Skill      int     `json:"skill"`
	Satiety    int     `json:"satiety"`
	BirthRound int     `json:"birth_round"`
}

// Bounds holds the configured limits animals must stay within.
type Bounds struct {
	SkillMin   int
	SkillMax   int
	SkillGain  int // Added on feeding, capped at SkillMax
	SatietyMax int
}

// NewPredator returns a fully fed predator.
func NewPredator(skill, birthRound int, b Bounds) Animal {
	return Animal{Species: SpeciesPredator, Skill: skill, Satiety: b.SatietyMax, BirthRound: birthRound}
}

// NewPrey returns a prey animal.
func NewPrey(skill, birthRound int) Animal {
	return Animal{Species: SpeciesPrey, Skill: skill, BirthRound: birthRound}
}

// IsPredator reports whether the animal is a predator.
func (a Animal) IsPredator() bool { return a.Species == SpeciesPredator }
