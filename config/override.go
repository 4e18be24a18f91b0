package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrSettingNotFound is returned when an override names a key the
// configuration does not have.
var ErrSettingNotFound = errors.New("setting not found")

// Set replaces a single setting addressed by its dotted YAML path,
// e.g. "predator.satiety_max" or "reproduction.prey.mode".
// The configuration is left untouched if the key is unknown or the value
// does not fit the setting's type. Set does not validate; game construction does.
func (c *Config) Set(key string, value any) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing config tree: %w", err)
	}

	parts := strings.Split(key, ".")
	node := tree
	for i, part := range parts[:len(parts)-1] {
		next, ok := node[part].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s", ErrSettingNotFound, strings.Join(parts[:i+1], "."))
		}
		node = next
	}
	last := parts[len(parts)-1]
	if _, ok := node[last]; !ok {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, key)
	}
	node[last] = value

	data, err = yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	next := &Config{}
	if err := yaml.Unmarshal(data, next); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	next.computeDerived()
	*c = *next
	return nil
}

// SetString applies a "key=value" assignment; the value is parsed as YAML,
// so "6", "true" and "[...]" arrive typed.
func (c *Config) SetString(assignment string) error {
	key, raw, ok := strings.Cut(assignment, "=")
	if !ok || key == "" {
		return fmt.Errorf("override %q: expected key=value", assignment)
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("override %q: %w", assignment, err)
	}
	return c.Set(strings.TrimSpace(key), value)
}
