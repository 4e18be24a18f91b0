package telemetry

import (
	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/game"
)

// HistogramRow is the population of both species at one skill level.
type HistogramRow struct {
	Level     int `csv:"Skill Level" json:"level"`
	Predators int `csv:"Predator Population" json:"predators"`
	Prey      int `csv:"Prey Population" json:"prey"`
}

// Histogram maps skill levels to populations, one row per level from 0 to
// the highest level present.
type Histogram []HistogramRow

// NewHistogram counts the board's animals by skill level.
func NewHistogram(snap game.GridSnapshot) Histogram {
	predators := snap.Animals(components.SpeciesPredator)
	prey := snap.Animals(components.SpeciesPrey)

	top := -1
	for _, a := range predators {
		top = max(top, a.Skill)
	}
	for _, a := range prey {
		top = max(top, a.Skill)
	}

	h := make(Histogram, top+1)
	for i := range h {
		h[i].Level = i
	}
	for _, a := range predators {
		h[a.Skill].Predators++
	}
	for _, a := range prey {
		h[a.Skill].Prey++
	}
	return h
}

// Count returns the population of a species at a level.
func (h Histogram) Count(level int, species components.Species) int {
	if level < 0 || level >= len(h) {
		return 0
	}
	if species == components.SpeciesPredator {
		return h[level].Predators
	}
	return h[level].Prey
}

// Total returns the population of a species across all levels.
func (h Histogram) Total(species components.Species) int {
	n := 0
	for level := range h {
		n += h.Count(level, species)
	}
	return n
}
