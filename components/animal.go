package components

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds reports an animal whose skill or satiety left the configured range.
var ErrOutOfBounds = errors.New("animal out of bounds")

// Feed resets a predator's satiety and applies the configured skill gain.
// Prey never feed; Feed is a no-op for them.
func Feed(a *Animal, b Bounds) {
	if !a.IsPredator() {
		return
	}
	a.Satiety = b.SatietyMax
	a.Skill = min(a.Skill+b.SkillGain, b.SkillMax)
}

// Age moves a predator one round closer to starvation.
func Age(a *Animal) {
	if !a.IsPredator() || a.Satiety == 0 {
		return
	}
	a.Satiety--
}

// IsStarved reports whether a predator has run out of satiety.
func IsStarved(a Animal) bool {
	return a.IsPredator() && a.Satiety <= 0
}

// Offspring returns a newborn with the parent's skill shifted by delta,
// clamped to the skill bounds. Newborn predators start fully fed.
func Offspring(parent Animal, delta, round int, b Bounds) Animal {
	skill := max(b.SkillMin, min(parent.Skill+delta, b.SkillMax))
	if parent.IsPredator() {
		return NewPredator(skill, round, b)
	}
	return NewPrey(skill, round)
}

// Validate checks the animal against its bounds.
func Validate(a Animal, b Bounds) error {
	if a.Skill < b.SkillMin || a.Skill > b.SkillMax {
		return fmt.Errorf("%w: %s skill %d outside [%d, %d]", ErrOutOfBounds, a.Species, a.Skill, b.SkillMin, b.SkillMax)
	}
	switch a.Species {
	case SpeciesPredator:
		if a.Satiety < 0 || a.Satiety > b.SatietyMax {
			return fmt.Errorf("%w: predator satiety %d outside [0, %d]", ErrOutOfBounds, a.Satiety, b.SatietyMax)
		}
	case SpeciesPrey:
		if a.Satiety != 0 {
			return fmt.Errorf("%w: prey satiety %d, want 0", ErrOutOfBounds, a.Satiety)
		}
	default:
		return fmt.Errorf("%w: unknown species %d", ErrOutOfBounds, a.Species)
	}
	return nil
}
