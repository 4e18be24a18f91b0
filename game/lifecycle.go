package game

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/systems"
)

// spawnStartingPopulation creates the starting animals of both species.
// They are not placed yet.
func (g *Grid) spawnStartingPopulation() (predators, prey []ecs.Entity) {
	for _, lc := range g.cfg.StartingLevels(g.cfg.Predator.PopulationConfig) {
		for range lc.Count {
			predators = append(predators, g.registry.Spawn(components.NewPredator(lc.Level, 0, g.rules.Bounds)))
		}
	}
	for _, lc := range g.cfg.StartingLevels(g.cfg.Prey) {
		for range lc.Count {
			prey = append(prey, g.registry.Spawn(components.NewPrey(lc.Level, 0)))
		}
	}
	return predators, prey
}

// replace gathers every survivor off the board and scatters them again.
func (g *Grid) replace() error {
	var predators, prey []ecs.Entity
	for i := range g.arena {
		predators = append(predators, g.arena[i].Predators...)
		prey = append(prey, g.arena[i].Prey...)
	}
	return g.place(predators, prey)
}

// place clears the board and drops each animal into a random cell with room
// for its species.
func (g *Grid) place(predators, prey []ecs.Entity) error {
	for i := range g.arena {
		g.arena[i].Clear()
	}
	if err := g.scatter(predators, components.SpeciesPredator); err != nil {
		return err
	}
	if err := g.scatter(prey, components.SpeciesPrey); err != nil {
		return err
	}
	g.placed = true
	return nil
}

func (g *Grid) scatter(animals []ecs.Entity, species components.Species) error {
	capacity := g.cfg.Board.CellCapacity
	slots := make([]int, 0, len(g.arena)*capacity)
	for i := range g.arena {
		for range capacity {
			slots = append(slots, i)
		}
	}
	if len(animals) > len(slots) {
		return fmt.Errorf("%w: %d %s for %d places", systems.ErrInvariant, len(animals), species, len(slots))
	}
	g.rng.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })

	for i, e := range animals {
		list := residents(&g.arena[slots[i]], species)
		*list = append(*list, e)
	}
	return nil
}

// populationCap is the most animals of one species the board can place.
func (g *Grid) populationCap() int {
	return g.cfg.Derived.PopulationCap
}

// cull removes the lowest-skilled animals of a species above the population
// cap. Equal skills are culled in row-major order. Returns the number culled.
func (g *Grid) cull(species components.Species) int {
	excess := g.registry.Count(species) - g.populationCap()
	if excess <= 0 {
		return 0
	}

	type member struct {
		entity ecs.Entity
		skill  int
	}
	var all []member
	for i := range g.arena {
		for _, e := range *residents(&g.arena[i], species) {
			all = append(all, member{entity: e, skill: g.registry.Get(e).Skill})
		}
	}
	slices.SortStableFunc(all, func(a, b member) int { return cmp.Compare(a.skill, b.skill) })

	doomed := make(map[ecs.Entity]bool, excess)
	for _, m := range all[:excess] {
		doomed[m.entity] = true
	}
	for i := range g.arena {
		list := residents(&g.arena[i], species)
		*list = slices.DeleteFunc(*list, func(e ecs.Entity) bool { return doomed[e] })
	}
	for e := range doomed {
		g.registry.Kill(e)
	}

	slog.Info("population_culled",
		"species", species.String(),
		"culled", excess,
		"cap", g.populationCap(),
	)
	return excess
}

// residents returns the cell's list for a species.
func residents(c *systems.Cell, species components.Species) *[]ecs.Entity {
	if species == components.SpeciesPredator {
		return &c.Predators
	}
	return &c.Prey
}
