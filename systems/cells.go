package systems

import (
	"cmp"
	"fmt"
	"math/rand"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
)

// Favor tags which species came out ahead in a cell.
// The values sum to a round score: negative favors predators, positive prey.
type Favor int8

const (
	FavorPredator Favor = -1
	FavorNeutral  Favor = 0
	FavorPrey     Favor = 1
)

// String returns the tag name.
func (f Favor) String() string {
	switch f {
	case FavorPredator:
		return "predator"
	case FavorPrey:
		return "prey"
	}
	return "neutral"
}

// MarshalText encodes the tag by name.
func (f Favor) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a tag name.
func (f *Favor) UnmarshalText(text []byte) error {
	switch string(text) {
	case "predator":
		*f = FavorPredator
	case "prey":
		*f = FavorPrey
	case "neutral":
		*f = FavorNeutral
	default:
		return fmt.Errorf("unknown favor %q", text)
	}
	return nil
}

// CellOutcome records what happened in one cell during a round.
type CellOutcome struct {
	Row            int   `json:"row"`
	Col            int   `json:"col"`
	PredatorBirths int   `json:"predator_births"`
	PredatorDeaths int   `json:"predator_deaths"`
	PreyBirths     int   `json:"prey_births"`
	PreyDeaths     int   `json:"prey_deaths"`
	Eaten          int   `json:"eaten"`
	Starved        int   `json:"starved"`
	Favor          Favor `json:"favor"`
}

// PredatorChange is the net change of the cell's predator population.
func (o CellOutcome) PredatorChange() int { return o.PredatorBirths - o.PredatorDeaths }

// PreyChange is the net change of the cell's prey population.
func (o CellOutcome) PreyChange() int { return o.PreyBirths - o.PreyDeaths }

// Cell is one board position and the animals placed in it.
type Cell struct {
	Row       int
	Col       int
	Predators []ecs.Entity
	Prey      []ecs.Entity
}

// Empty reports whether the cell holds no animals.
func (c *Cell) Empty() bool {
	return len(c.Predators) == 0 && len(c.Prey) == 0
}

// Clear drops all residents without touching the registry.
func (c *Cell) Clear() {
	c.Predators = c.Predators[:0]
	c.Prey = c.Prey[:0]
}

type resident struct {
	entity ecs.Entity
	animal components.Animal
}

// Resolve runs one round of the survival algorithm on the cell's residents.
//
// Predators hunt strongest first, each scanning the surviving prey weakest
// first and eating at most one. Fed predators feed; the rest age and starve
// when their satiety runs out. Skill gain is skipped for predators that
// split. Reproduction follows predation and never pushes a species past
// rules.CellCapacity. Births are stamped round+1.
//
// Invalid residents return an error wrapping ErrInvariant and leave the cell
// and registry untouched.
func (c *Cell) Resolve(reg *Registry, rules *Rules, round int, rng *rand.Rand) (CellOutcome, error) {
	out := CellOutcome{Row: c.Row, Col: c.Col}
	if c.Empty() {
		return out, nil
	}

	predators, err := c.residents(reg, c.Predators, components.SpeciesPredator, rules)
	if err != nil {
		return out, err
	}
	prey, err := c.residents(reg, c.Prey, components.SpeciesPrey, rules)
	if err != nil {
		return out, err
	}

	slices.SortStableFunc(predators, func(a, b resident) int { return cmp.Compare(b.animal.Skill, a.animal.Skill) })
	slices.SortStableFunc(prey, func(a, b resident) int { return cmp.Compare(a.animal.Skill, b.animal.Skill) })

	// Pairing
	fed := make([]bool, len(predators))
	eaten := make([]bool, len(prey))
	for i := range predators {
		for j := range prey {
			if eaten[j] {
				continue
			}
			if rules.Encounter(predators[i].animal.Skill, prey[j].animal.Skill, rng) {
				fed[i], eaten[j] = true, true
				break
			}
		}
	}

	// Feeding, aging, starvation. Skill gain only applies when the fed
	// predator lives on; a split already moves skill through its offspring.
	feed := rules.Bounds
	if rules.PredatorBreeding.Splits() {
		feed.SkillGain = 0
	}
	var dead []ecs.Entity
	var keptPredators []resident
	var predatorParents []components.Animal
	for i := range predators {
		r := predators[i]
		if fed[i] {
			components.Feed(&r.animal, feed)
			predatorParents = append(predatorParents, r.animal)
			if rules.PredatorBreeding.Splits() {
				dead = append(dead, r.entity)
				out.PredatorDeaths++
				continue
			}
		} else {
			components.Age(&r.animal)
			if components.IsStarved(r.animal) {
				dead = append(dead, r.entity)
				out.PredatorDeaths++
				out.Starved++
				continue
			}
		}
		keptPredators = append(keptPredators, r)
	}

	var keptPrey []resident
	for j := range prey {
		if eaten[j] {
			dead = append(dead, prey[j].entity)
			out.PreyDeaths++
			out.Eaten++
			continue
		}
		keptPrey = append(keptPrey, prey[j])
	}

	// Reproduction
	var preyParents []components.Animal
	switch {
	case rules.PreyBreeding.Splits():
		if len(prey) == 1 && len(keptPrey) == 1 {
			preyParents = append(preyParents, keptPrey[0].animal)
			dead = append(dead, keptPrey[0].entity)
			out.PreyDeaths++
			keptPrey = nil
		}
	default:
		for j := len(keptPrey) - 1; j >= 0; j-- {
			preyParents = append(preyParents, keptPrey[j].animal)
		}
	}

	newPredators := rules.PredatorBreeding.offspring(predatorParents, round+1, rules.CellCapacity-len(keptPredators), rules.Bounds)
	newPrey := rules.PreyBreeding.offspring(preyParents, round+1, rules.CellCapacity-len(keptPrey), rules.Bounds)
	out.PredatorBirths = len(newPredators)
	out.PreyBirths = len(newPrey)

	// Commit: write back survivors before any structural change to the world.
	c.Predators = c.Predators[:0]
	for _, r := range keptPredators {
		*reg.Get(r.entity) = r.animal
		c.Predators = append(c.Predators, r.entity)
	}
	c.Prey = c.Prey[:0]
	for _, r := range keptPrey {
		c.Prey = append(c.Prey, r.entity)
	}
	for _, e := range dead {
		reg.Kill(e)
	}
	for _, a := range newPredators {
		c.Predators = append(c.Predators, reg.Spawn(a))
	}
	for _, a := range newPrey {
		c.Prey = append(c.Prey, reg.Spawn(a))
	}

	out.Favor = favor(out)
	return out, nil
}

// favor compares net population change; the larger gain wins.
func favor(o CellOutcome) Favor {
	switch pred, prey := o.PredatorChange(), o.PreyChange(); {
	case pred > prey:
		return FavorPredator
	case prey > pred:
		return FavorPrey
	}
	return FavorNeutral
}

func (c *Cell) residents(reg *Registry, entities []ecs.Entity, species components.Species, rules *Rules) ([]resident, error) {
	if len(entities) > rules.CellCapacity {
		return nil, fmt.Errorf("%w: cell (%d,%d) holds %d %s, capacity %d",
			ErrInvariant, c.Row, c.Col, len(entities), species, rules.CellCapacity)
	}
	out := make([]resident, 0, len(entities))
	for _, e := range entities {
		if !reg.Alive(e) {
			return nil, fmt.Errorf("%w: cell (%d,%d) holds a dead %s", ErrInvariant, c.Row, c.Col, species)
		}
		a := *reg.Get(e)
		if a.Species != species {
			return nil, fmt.Errorf("%w: cell (%d,%d) holds a %s in its %s list", ErrInvariant, c.Row, c.Col, a.Species, species)
		}
		if err := components.Validate(a, rules.Bounds); err != nil {
			return nil, fmt.Errorf("%w: cell (%d,%d): %w", ErrInvariant, c.Row, c.Col, err)
		}
		out = append(out, resident{entity: e, animal: a})
	}
	return out, nil
}
