package conditions

import (
	"fmt"
	"sync"

	"github.com/vovakirdan/outpost-campaign/internal/sim"
)

// Evaluator is the variant-specific part of a condition. Evaluate is the
// only method that decides the boolean result; Progress is a UI estimate
// and must never feed back into the result.
type Evaluator interface {
	// Kind returns the config type tag this evaluator was built from.
	Kind() string

	// Evaluate returns whether the criterion holds for this snapshot.
	// Called at most once per turn per condition.
	Evaluate(snap sim.Snapshot) bool

	// Progress returns a [0,1] estimate of closeness to satisfaction.
	Progress(snap sim.Snapshot) float64

	// Reset clears any internal state (streak counters, baselines).
	Reset()
}

// auxReporter is an optional Evaluator extension exposing variant-specific
// diagnostic values recorded alongside the last check result.
type auxReporter interface {
	Aux() map[string]float64
}

// Builder constructs an evaluator from a validated config.
type Builder func(Config) (Evaluator, error)

// Predicate is a named per-turn requirement over a snapshot, referenced
// from configs by key (building_active, consecutive_turns, survival).
type Predicate func(snap sim.Snapshot) bool

var (
	mu         sync.RWMutex
	builders   = make(map[string]Builder)
	predicates = make(map[string]Predicate)
)

// RegisterKind adds a condition builder for a config type tag.
// Panics if the kind is already registered.
func RegisterKind(kind string, b Builder) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := builders[kind]; exists {
		panic(fmt.Sprintf("conditions: kind %q already registered", kind))
	}
	builders[kind] = b
}

// RegisterPredicate adds a named snapshot predicate.
// Panics if the name is already registered.
func RegisterPredicate(name string, p Predicate) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := predicates[name]; exists {
		panic(fmt.Sprintf("conditions: predicate %q already registered", name))
	}
	predicates[name] = p
}

// LookupPredicate returns the predicate registered under name.
func LookupPredicate(name string) (Predicate, bool) {
	mu.RLock()
	defer mu.RUnlock()

	p, ok := predicates[name]
	return p, ok
}

func lookupBuilder(kind string) (Builder, bool) {
	mu.RLock()
	defer mu.RUnlock()

	b, ok := builders[kind]
	return b, ok
}

func init() {
	RegisterPredicate("fuel_positive", func(snap sim.Snapshot) bool {
		return snap.Resource(sim.ResourceFuel) > 0
	})
	RegisterPredicate("both_refineries_operational", func(snap sim.Snapshot) bool {
		return snap.CountActive(sim.BuildingRefinery, sim.ModeFuel) >= 1 &&
			snap.CountActive(sim.BuildingRefinery, sim.ModeMaterials) >= 1
	})
	RegisterPredicate("drone_pad_built", func(snap sim.Snapshot) bool {
		return snap.CountBuildings(sim.BuildingDronePad, "") >= 1
	})
	RegisterPredicate("storage_built", func(snap sim.Snapshot) bool {
		return snap.CountBuildings(sim.BuildingStorage, "") >= 1
	})
}
