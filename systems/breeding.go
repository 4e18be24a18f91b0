package systems

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/config"
)

// ErrInvariant marks an engine state that valid configuration can never produce.
var ErrInvariant = errors.New("engine invariant violated")

// Breeding is one species' reproduction rule.
//
// Split modes replace each parent with two newborns, one skill level above
// and one below the parent. Rate mode keeps the parents and adds
// Births newborns per Per parents, rounded down, each inheriting its
// parent's skill.
type Breeding struct {
	Mode   string
	Births int
	Per    int
}

// Splits reports whether parents are replaced by their offspring.
func (b Breeding) Splits() bool {
	return b.Mode == config.ReproduceSplit || b.Mode == config.ReproduceLoneSplit
}

// RateBirths returns the number of newborns rate mode yields for the given parents.
func (b Breeding) RateBirths(parents int) int {
	if b.Mode != config.ReproduceRate || b.Per <= 0 {
		return 0
	}
	return parents * b.Births / b.Per
}

// offspring returns the newborns of the given parents, strongest parent first,
// never more than budget. birthRound is stamped on every newborn.
func (b Breeding) offspring(parents []components.Animal, birthRound, budget int, bounds components.Bounds) []components.Animal {
	if budget <= 0 || len(parents) == 0 {
		return nil
	}
	var children []components.Animal
	switch {
	case b.Splits():
		for _, p := range parents {
			for _, delta := range [2]int{1, -1} {
				if len(children) == budget {
					return children
				}
				children = append(children, components.Offspring(p, delta, birthRound, bounds))
			}
		}
	case b.Mode == config.ReproduceRate:
		n := min(b.RateBirths(len(parents)), budget)
		for i := 0; i < n; i++ {
			children = append(children, components.Offspring(parents[i%len(parents)], 0, birthRound, bounds))
		}
	}
	return children
}

// Rules bundles everything the cell survival algorithm needs.
type Rules struct {
	Bounds           components.Bounds
	Encounter        EncounterRule
	PredatorBreeding Breeding
	PreyBreeding     Breeding
	CellCapacity     int // Per species, after resolution
}

// NewRules derives the survival rules from a configuration.
func NewRules(cfg *config.Config) (*Rules, error) {
	encounter, err := NewEncounterRule(cfg.Encounter)
	if err != nil {
		return nil, err
	}
	if cfg.Reproduction.Predator.Mode == config.ReproduceLoneSplit {
		return nil, fmt.Errorf("%w: predators cannot use %s", config.ErrInvalidConfig, config.ReproduceLoneSplit)
	}
	return &Rules{
		Bounds: components.Bounds{
			SkillMin:   cfg.Skill.Min,
			SkillMax:   cfg.Skill.Max,
			SkillGain:  cfg.Skill.Gain,
			SatietyMax: cfg.Predator.SatietyMax,
		},
		Encounter:        encounter,
		PredatorBreeding: Breeding(cfg.Reproduction.Predator),
		PreyBreeding:     Breeding(cfg.Reproduction.Prey),
		CellCapacity:     cfg.Reproduction.CellCapacity,
	}, nil
}
