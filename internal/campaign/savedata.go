package campaign

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// SaveVersion tags serialized campaign state. Loading a payload with a
// different version is refused wholesale; state is never partially applied.
const SaveVersion = 1

// ErrIncompatibleSave is returned when a save payload's version does not
// match SaveVersion.
var ErrIncompatibleSave = errors.New("campaign: incompatible save version")

// SaveData is the persistable campaign state. Per-level condition state is
// deliberately not saved; levels restart from the beginning after a load.
type SaveData struct {
	Version        int      `json:"version"`
	CurrentLevelID string   `json:"current_level_id"`
	Completed      []string `json:"completed"`
	Stats          Stats    `json:"stats"`
}

// SaveData captures the controller's campaign state.
func (c *Controller) SaveData() SaveData {
	completed := make([]string, 0, len(c.completed))
	for id := range c.completed {
		completed = append(completed, id)
	}
	sort.Strings(completed)

	return SaveData{
		Version:        SaveVersion,
		CurrentLevelID: c.currentID,
		Completed:      completed,
		Stats:          c.stats,
	}
}

// LoadSaveData restores campaign state from a save payload. On a version
// mismatch it returns ErrIncompatibleSave and leaves the controller
// untouched. The restored controller is Idle; the caller restarts a level.
func (c *Controller) LoadSaveData(d SaveData) error {
	if d.Version != SaveVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrIncompatibleSave, d.Version, SaveVersion)
	}

	completed := make(map[string]struct{}, len(d.Completed))
	for _, id := range d.Completed {
		completed[id] = struct{}{}
	}

	c.completed = completed
	c.stats = d.Stats
	c.currentID = d.CurrentLevelID
	if def, ok := c.registry.Get(d.CurrentLevelID); ok {
		c.current = def
	}
	c.set = nil
	c.state = StateIdle
	c.campaignDone = false
	return nil
}

// MarshalSave encodes save data as JSON.
func MarshalSave(d SaveData) ([]byte, error) {
	return json.Marshal(d)
}

// UnmarshalSave decodes save data from JSON, rejecting unknown versions.
func UnmarshalSave(data []byte) (SaveData, error) {
	var d SaveData
	if err := json.Unmarshal(data, &d); err != nil {
		return SaveData{}, fmt.Errorf("campaign: decoding save: %w", err)
	}
	if d.Version != SaveVersion {
		return SaveData{}, fmt.Errorf("%w: got %d, want %d", ErrIncompatibleSave, d.Version, SaveVersion)
	}
	return d, nil
}
