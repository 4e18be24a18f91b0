// Package main provides CMA-ES tuning of lab parameters for balanced games.
package main

import (
	"math"

	"github.com/pthm-cable/predprey/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded before use
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// The encounter rule is locked to weighted and prey to rate reproduction so
// every parameter has an effect. Predators keep splitting, which ignores
// skill.gain, so the gain is not tuned.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Encounters
			{Name: "encounter_weight", Path: "encounter.weight", Min: 0.0, Max: 0.5, Default: 0.1},
			// Predators
			{Name: "satiety_max", Path: "predator.satiety_max", Min: 1, Max: 6, Default: 2, Integer: true},
			// Prey reproduction
			{Name: "prey_births", Path: "reproduction.prey.births", Min: 0, Max: 4, Default: 1, Integer: true},
			{Name: "prey_per", Path: "reproduction.prey.per", Min: 1, Max: 4, Default: 2, Integer: true},
			// Capacity
			{Name: "cell_capacity", Path: "reproduction.cell_capacity", Min: 4, Max: 12, Default: 8, Integer: true},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp bounds every value and rounds the integer ones.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := max(spec.Min, min(v[i], spec.Max))
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Encounter.Rule = config.EncounterWeighted
	cfg.Encounter.Weight = clamped[0]

	cfg.Predator.SatietyMax = int(clamped[1])

	cfg.Reproduction.Prey.Mode = config.ReproduceRate
	cfg.Reproduction.Prey.Births = int(clamped[2])
	cfg.Reproduction.Prey.Per = int(clamped[3])

	cfg.Reproduction.CellCapacity = max(int(clamped[4]), cfg.Board.CellCapacity)
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Encounter.Weight,
		float64(cfg.Predator.SatietyMax),
		float64(cfg.Reproduction.Prey.Births),
		float64(cfg.Reproduction.Prey.Per),
		float64(cfg.Reproduction.CellCapacity),
	}
}
