package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError names the offending setting.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the configuration for combinations the engine cannot run.
// It returns the first problem found as a *ValidationError. Derived values
// are refreshed first, so Validate also picks up edits made after Load.
func (c *Config) Validate() error {
	c.computeDerived()

	b := c.Board
	if b.MinLength < 1 || b.MaxLength < b.MinLength {
		return invalid("board.min_length", "bounds [%d, %d] are empty", b.MinLength, b.MaxLength)
	}
	if b.Length < b.MinLength || b.Length > b.MaxLength {
		return invalid("board.length", "%d outside [%d, %d]", b.Length, b.MinLength, b.MaxLength)
	}
	if b.CellCapacity < 1 {
		return invalid("board.cell_capacity", "must be at least 1, got %d", b.CellCapacity)
	}

	s := c.Skill
	if s.Min < 0 || s.Max < s.Min {
		return invalid("skill.min", "bounds [%d, %d] are empty or negative", s.Min, s.Max)
	}
	if s.Gain < 0 {
		return invalid("skill.gain", "must not be negative, got %d", s.Gain)
	}

	if c.Predator.SatietyMax < 1 {
		return invalid("predator.satiety_max", "must be at least 1, got %d", c.Predator.SatietyMax)
	}

	if err := c.validatePopulation("predator", c.Predator.PopulationConfig); err != nil {
		return err
	}
	if err := c.validatePopulation("prey", c.Prey); err != nil {
		return err
	}

	switch c.Encounter.Rule {
	case EncounterStrict, EncounterAtLeast:
	case EncounterWeighted:
		if c.Encounter.Weight < 0 || c.Encounter.Weight > 1 {
			return invalid("encounter.weight", "must be within [0, 1], got %g", c.Encounter.Weight)
		}
	default:
		return invalid("encounter.rule", "unknown rule %q", c.Encounter.Rule)
	}

	r := c.Reproduction
	if r.CellCapacity < b.CellCapacity {
		return invalid("reproduction.cell_capacity", "%d is below board.cell_capacity %d", r.CellCapacity, b.CellCapacity)
	}
	if err := validateRule("reproduction.predator", r.Predator, ReproduceSplit); err != nil {
		return err
	}
	if err := validateRule("reproduction.prey", r.Prey, ReproduceLoneSplit); err != nil {
		return err
	}

	switch c.Scoring.RoundWinner {
	case WinnerPopulationChange, WinnerCellMajority:
	default:
		return invalid("scoring.round_winner", "unknown rule %q", c.Scoring.RoundWinner)
	}

	if c.Game.Rounds < 1 {
		return invalid("game.rounds", "must be at least 1, got %d", c.Game.Rounds)
	}
	return nil
}

func (c *Config) validatePopulation(species string, p PopulationConfig) error {
	total := 0
	for _, lc := range c.StartingLevels(p) {
		if lc.Count < 0 {
			return invalid(species+".count", "negative population %d at level %d", lc.Count, lc.Level)
		}
		if lc.Count > 0 && (lc.Level < c.Skill.Min || lc.Level > c.Skill.Max) {
			return invalid(species+".starting_level", "level %d outside skill bounds [%d, %d]", lc.Level, c.Skill.Min, c.Skill.Max)
		}
		total += lc.Count
	}
	if limit := c.Derived.PopulationCap; total > limit {
		return invalid(species+".count", "population %d exceeds board capacity %d", total, limit)
	}
	return nil
}

// validateRule accepts rate, none and the species' own split mode.
func validateRule(field string, r ReproductionRule, split string) error {
	switch r.Mode {
	case split, ReproduceNone:
		return nil
	case ReproduceRate:
		if r.Per < 1 {
			return invalid(field+".per", "must be at least 1, got %d", r.Per)
		}
		if r.Births < 0 {
			return invalid(field+".births", "must not be negative, got %d", r.Births)
		}
		return nil
	}
	return invalid(field+".mode", "unknown mode %q", r.Mode)
}
