package systems

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/predprey/config"
)

// EncounterRule decides whether a predator catches a prey animal.
type EncounterRule func(predatorSkill, preySkill int, rng *rand.Rand) bool

// StrictEncounter is the lab's rule: the higher skill wins and
// equal skill is a fair coin flip.
func StrictEncounter(predatorSkill, preySkill int, rng *rand.Rand) bool {
	switch {
	case predatorSkill > preySkill:
		return true
	case predatorSkill == preySkill:
		return rng.Intn(2) == 0
	}
	return false
}

// AtLeastEncounter lets the predator win whenever it is at least as skilled.
func AtLeastEncounter(predatorSkill, preySkill int, _ *rand.Rand) bool {
	return predatorSkill >= preySkill
}

// WeightedEncounter returns a rule whose win chance moves by weight per
// skill point of difference from an even 50%.
func WeightedEncounter(weight float64) EncounterRule {
	return func(predatorSkill, preySkill int, rng *rand.Rand) bool {
		p := 0.5 + weight*float64(predatorSkill-preySkill)
		p = max(0, min(p, 1))
		return rng.Float64() < p
	}
}

// NewEncounterRule maps the configured rule name to its implementation.
func NewEncounterRule(cfg config.EncounterConfig) (EncounterRule, error) {
	switch cfg.Rule {
	case config.EncounterStrict:
		return StrictEncounter, nil
	case config.EncounterAtLeast:
		return AtLeastEncounter, nil
	case config.EncounterWeighted:
		return WeightedEncounter(cfg.Weight), nil
	}
	return nil, fmt.Errorf("%w: encounter rule %q", config.ErrInvalidConfig, cfg.Rule)
}
