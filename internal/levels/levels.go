// Package levels provides the campaign level registry: ordered level
// definitions with their win/lose condition configs, loaded from YAML.
// The registry is read-only input to the campaign controller.
package levels

import (
	"fmt"

	"github.com/vovakirdan/outpost-campaign/internal/conditions"
)

// Definition describes one campaign level.
type Definition struct {
	ID             string              `yaml:"id"`
	Name           string              `yaml:"name"`
	Description    string              `yaml:"description,omitempty"`
	Enabled        bool                `yaml:"enabled"`
	WinConditions  []conditions.Config `yaml:"win_conditions"`
	LoseConditions []conditions.Config `yaml:"lose_conditions"`
}

// Campaign is the top-level YAML document.
type Campaign struct {
	Name   string       `yaml:"name"`
	Levels []Definition `yaml:"levels"`
}

// Registry holds an ordered, immutable collection of level definitions.
type Registry struct {
	name   string
	levels []Definition
	index  map[string]int
}

// NewRegistry builds a registry from a campaign document.
// Duplicate level ids are rejected.
func NewRegistry(c Campaign) (*Registry, error) {
	index := make(map[string]int, len(c.Levels))
	for i, def := range c.Levels {
		if def.ID == "" {
			return nil, fmt.Errorf("levels: level %d has no id", i)
		}
		if _, dup := index[def.ID]; dup {
			return nil, fmt.Errorf("levels: duplicate level id %q", def.ID)
		}
		index[def.ID] = i
	}
	return &Registry{name: c.Name, levels: c.Levels, index: index}, nil
}

// Name returns the campaign name.
func (r *Registry) Name() string { return r.name }

// Get resolves a level definition by id.
func (r *Registry) Get(id string) (Definition, bool) {
	i, ok := r.index[id]
	if !ok {
		return Definition{}, false
	}
	return r.levels[i], true
}

// List returns all level definitions in campaign order.
func (r *Registry) List() []Definition {
	out := make([]Definition, len(r.levels))
	copy(out, r.levels)
	return out
}

// EnabledCount returns the number of enabled levels.
func (r *Registry) EnabledCount() int {
	n := 0
	for _, def := range r.levels {
		if def.Enabled {
			n++
		}
	}
	return n
}

// FirstEnabled returns the id of the first enabled level.
func (r *Registry) FirstEnabled() (string, bool) {
	for _, def := range r.levels {
		if def.Enabled {
			return def.ID, true
		}
	}
	return "", false
}

// NextEnabled returns the id of the first enabled level after the given one.
func (r *Registry) NextEnabled(afterID string) (string, bool) {
	i, ok := r.index[afterID]
	if !ok {
		return "", false
	}
	for _, def := range r.levels[i+1:] {
		if def.Enabled {
			return def.ID, true
		}
	}
	return "", false
}

// PrevEnabled returns the id of the last enabled level before the given one.
func (r *Registry) PrevEnabled(beforeID string) (string, bool) {
	i, ok := r.index[beforeID]
	if !ok {
		return "", false
	}
	for j := i - 1; j >= 0; j-- {
		if r.levels[j].Enabled {
			return r.levels[j].ID, true
		}
	}
	return "", false
}
