// Package game owns the board: the cell arena, the animal registry and the
// round loop that drives every cell through the survival algorithm.
package game

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/systems"
)

// Grid holds the complete state of one lab game.
// A Grid is not safe for concurrent use.
type Grid struct {
	cfg   *config.Config
	rules *systems.Rules
	seed  int64
	rng   *rand.Rand

	registry *systems.Registry
	arena    []systems.Cell // row*size + col
	size     int

	// State
	round  int  // rounds resolved so far
	placed bool  // residents come from a fresh placement pass
	err    error // invariant failure; sticks until Reset

	perf *PerfStats
}

// New validates cfg, seeds the starting populations and places them.
// The grid keeps its own copy of cfg.
func New(cfg *config.Config, seed int64) (*Grid, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules, err := systems.NewRules(cfg)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		cfg:   cfg,
		rules: rules,
		seed:  seed,
		size:  cfg.Board.Length,
	}
	if err := g.build(); err != nil {
		return nil, err
	}
	return g, nil
}

// Reset discards the game, including timings and any invariant failure, and
// rebuilds it from the same configuration and seed.
func (g *Grid) Reset() error {
	return g.build()
}

func (g *Grid) build() error {
	g.rng = rand.New(rand.NewSource(g.seed))
	g.registry = systems.NewRegistry()
	g.arena = make([]systems.Cell, g.size*g.size)
	for i := range g.arena {
		g.arena[i].Row = i / g.size
		g.arena[i].Col = i % g.size
	}
	g.round = 0
	g.placed = false
	g.perf = NewPerfStats()
	g.err = nil

	predators, prey := g.spawnStartingPopulation()
	if err := g.place(predators, prey); err != nil {
		return fmt.Errorf("placing starting animals: %w", err)
	}
	return nil
}

// Config returns the grid's configuration. Callers must not modify it.
func (g *Grid) Config() *config.Config { return g.cfg }

// Seed returns the RNG seed the grid was built with.
func (g *Grid) Seed() int64 { return g.seed }

// Size returns the board side length.
func (g *Grid) Size() int { return g.size }

// Round returns the number of rounds resolved so far.
func (g *Grid) Round() int { return g.round }

// Finished reports whether the configured number of rounds has been played.
func (g *Grid) Finished() bool { return g.round >= g.cfg.Game.Rounds }

// Perf returns the per-phase timing collector.
func (g *Grid) Perf() *PerfStats { return g.perf }

// cell returns the cell at (row, col).
func (g *Grid) cell(row, col int) *systems.Cell {
	return &g.arena[row*g.size+col]
}
