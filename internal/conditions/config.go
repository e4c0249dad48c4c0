// Package conditions implements the win/lose criteria evaluated against
// simulation snapshots each turn. A Condition pairs a variant-specific
// evaluator with shared historical state (met flag, check count, first-met
// turn); a Set aggregates a level's win conditions (AND) and lose
// conditions (OR) and raises edge-triggered notifications on transitions.
package conditions

import "fmt"

// Condition kind tags. Each kind has a builder registered in this package;
// new kinds can be registered from the outside without touching Set.
const (
	KindBuildingCount    = "building_count"
	KindBuildingActive   = "building_active"
	KindConsecutiveTurns = "consecutive_turns"
	KindSurvival         = "survival"
	KindFuelDepleted     = "fuel_depleted"
	KindTurnLimit        = "turn_limit"
	KindStorageExceeded  = "storage_exceeded"
	KindResourceDepleted = "resource_depleted"
)

// Comparators accepted by the building_count kind.
const (
	CompareMin   = "min"   // count >= Count
	CompareExact = "exact" // count == Count
	CompareTotal = "total" // total buildings of all types >= Count
)

// Config holds the immutable parameters of one condition. Only the fields
// relevant to the configured Type are consulted; the rest stay zero.
type Config struct {
	Type  string `yaml:"type"`
	Label string `yaml:"label,omitempty"` // display name, derived if empty

	// building_count
	Building   string `yaml:"building,omitempty"`
	Mode       string `yaml:"mode,omitempty"`
	Comparator string `yaml:"comparator,omitempty"` // defaults to "min"
	Count      int    `yaml:"count,omitempty"`

	// building_active
	Predicate string `yaml:"predicate,omitempty"`

	// consecutive_turns, survival
	Turns    int      `yaml:"turns,omitempty"`
	Requires []string `yaml:"requires,omitempty"`

	// turn_limit
	MaxTurns int `yaml:"max_turns,omitempty"`

	// fuel_depleted, storage_exceeded, resource_depleted
	Resource     string  `yaml:"resource,omitempty"`
	Limit        float64 `yaml:"limit,omitempty"`
	WarningTurns int     `yaml:"warning_turns,omitempty"`
}

// ConfigError reports a malformed condition config. Construction failures
// are recoverable: Set.Load logs and skips the offending condition instead
// of aborting the level load.
type ConfigError struct {
	Kind   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("conditions: invalid %s config: %s %s", e.Kind, e.Field, e.Reason)
}

func configErr(kind, field, reason string) error {
	return &ConfigError{Kind: kind, Field: field, Reason: reason}
}
