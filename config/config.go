// Package config provides configuration loading and access for the lab engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Encounter rules.
const (
	EncounterStrict   = "strict"
	EncounterAtLeast  = "at_least"
	EncounterWeighted = "weighted"
)

// Reproduction modes.
const (
	ReproduceSplit     = "split"
	ReproduceLoneSplit = "lone_split"
	ReproduceRate      = "rate"
	ReproduceNone      = "none"
)

// Round winner rules.
const (
	WinnerPopulationChange = "population_change"
	WinnerCellMajority     = "cell_majority"
)

// Config holds all lab configuration parameters.
type Config struct {
	Board        BoardConfig        `yaml:"board"`
	Skill        SkillConfig        `yaml:"skill"`
	Predator     PredatorConfig     `yaml:"predator"`
	Prey         PopulationConfig   `yaml:"prey"`
	Encounter    EncounterConfig    `yaml:"encounter"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Scoring      ScoringConfig      `yaml:"scoring"`
	Game         GameConfig         `yaml:"game"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// BoardConfig holds board dimensions and placement limits.
type BoardConfig struct {
	Length                    int  `yaml:"length"`
	MinLength                 int  `yaml:"min_length"`
	MaxLength                 int  `yaml:"max_length"`
	CellCapacity              int  `yaml:"cell_capacity"` // Per species, when animals are placed
	CustomizedStartingAnimals bool `yaml:"customized_starting_animals"`
}

// SkillConfig holds skill level bounds.
type SkillConfig struct {
	Min  int `yaml:"min"`
	Max  int `yaml:"max"`
	Gain int `yaml:"gain"` // Added to a predator's skill when it feeds
}

// LevelCount is one row of a starting skill distribution.
type LevelCount struct {
	Level int `yaml:"level"`
	Count int `yaml:"count"`
}

// PopulationConfig describes how a species is seeded.
// Distribution is used by default; Count at StartingLevel when the board
// has customized starting animals.
type PopulationConfig struct {
	Count         int          `yaml:"count"`
	StartingLevel int          `yaml:"starting_level"`
	Distribution  []LevelCount `yaml:"distribution"`
}

// PredatorConfig holds predator seeding and hunger parameters.
type PredatorConfig struct {
	PopulationConfig `yaml:",inline"`
	SatietyMax       int `yaml:"satiety_max"` // Rounds until starvation when fully fed
}

// EncounterConfig selects the predator-vs-prey comparison rule.
type EncounterConfig struct {
	Rule   string  `yaml:"rule"`
	Weight float64 `yaml:"weight"` // weighted rule: win chance per skill point of difference
}

// ReproductionRule configures one species' reproduction.
type ReproductionRule struct {
	Mode   string `yaml:"mode"`
	Births int    `yaml:"births"` // rate mode: births per Per survivors
	Per    int    `yaml:"per"`
}

// ReproductionConfig holds reproduction parameters.
type ReproductionConfig struct {
	CellCapacity int              `yaml:"cell_capacity"` // Per species, after a round resolves
	Predator     ReproductionRule `yaml:"predator"`
	Prey         ReproductionRule `yaml:"prey"`
}

// ScoringConfig selects the round winner rule.
type ScoringConfig struct {
	RoundWinner string `yaml:"round_winner"`
}

// GameConfig holds game length.
type GameConfig struct {
	Rounds int `yaml:"rounds"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cells         int // Board.Length squared
	PopulationCap int // Per species, Cells * Board.CellCapacity
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. It panics if they do not parse,
// which only happens when defaults.yaml itself is broken.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cells = c.Board.Length * c.Board.Length
	c.Derived.PopulationCap = c.Derived.Cells * c.Board.CellCapacity
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Predator.Distribution = append([]LevelCount(nil), c.Predator.Distribution...)
	out.Prey.Distribution = append([]LevelCount(nil), c.Prey.Distribution...)
	return &out
}

// StartingLevels returns the starting skill level -> count table for a species
// population, honouring the customized starting animals switch.
func (c *Config) StartingLevels(p PopulationConfig) []LevelCount {
	if c.Board.CustomizedStartingAnimals {
		return []LevelCount{{Level: p.StartingLevel, Count: p.Count}}
	}
	return p.Distribution
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
