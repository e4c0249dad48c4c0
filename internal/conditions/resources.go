package conditions

import "github.com/vovakirdan/outpost-campaign/internal/sim"

func init() {
	RegisterKind(KindFuelDepleted, newFuelDepleted)
	RegisterKind(KindStorageExceeded, newStorageExceeded)
	RegisterKind(KindResourceDepleted, newResourceDepleted)
}

// defaultWarningTurns is the estimated-turns-remaining threshold below
// which fuel depletion progress starts escalating.
const defaultWarningTurns = 10

// fuelDepleted triggers when fuel reaches zero. Progress stays at zero
// while the estimated turns remaining exceed the warning threshold, then
// escalates quadratically as the estimate approaches zero. Burn rate is
// estimated from the fuel delta between consecutive checks.
type fuelDepleted struct {
	warningTurns int

	lastFuel float64
	haveLast bool
	fuel     float64
	estLeft  float64 // estimated turns remaining, -1 when unknown
}

func newFuelDepleted(cfg Config) (Evaluator, error) {
	warn := cfg.WarningTurns
	if warn < 0 {
		return nil, configErr(cfg.Type, "warning_turns", "must not be negative")
	}
	if warn == 0 {
		warn = defaultWarningTurns
	}
	return &fuelDepleted{warningTurns: warn, estLeft: -1}, nil
}

func (e *fuelDepleted) Kind() string { return KindFuelDepleted }

func (e *fuelDepleted) Evaluate(snap sim.Snapshot) bool {
	e.fuel = snap.Resource(sim.ResourceFuel)

	e.estLeft = -1
	if e.haveLast {
		if burn := e.lastFuel - e.fuel; burn > 0 {
			e.estLeft = e.fuel / burn
		}
	}
	e.lastFuel = e.fuel
	e.haveLast = true

	return e.fuel <= 0
}

func (e *fuelDepleted) Progress(sim.Snapshot) float64 {
	if e.fuel <= 0 {
		return 1
	}
	if e.estLeft < 0 || e.estLeft >= float64(e.warningTurns) {
		return 0
	}
	p := 1 - e.estLeft/float64(e.warningTurns)
	return p * p
}

func (e *fuelDepleted) Reset() {
	e.lastFuel = 0
	e.haveLast = false
	e.fuel = 0
	e.estLeft = -1
}

func (e *fuelDepleted) Aux() map[string]float64 {
	return map[string]float64{"fuel": e.fuel, "turns_left": e.estLeft}
}

// storageExceeded triggers when a resource's stored amount exceeds a limit.
type storageExceeded struct {
	resource string
	limit    float64
}

func newStorageExceeded(cfg Config) (Evaluator, error) {
	if cfg.Resource == "" {
		return nil, configErr(cfg.Type, "resource", "is required")
	}
	if cfg.Limit <= 0 {
		return nil, configErr(cfg.Type, "limit", "must be positive")
	}
	return &storageExceeded{resource: cfg.Resource, limit: cfg.Limit}, nil
}

func (e *storageExceeded) Kind() string { return KindStorageExceeded }

func (e *storageExceeded) Evaluate(snap sim.Snapshot) bool {
	return snap.Resource(e.resource) > e.limit
}

func (e *storageExceeded) Progress(snap sim.Snapshot) float64 {
	return snap.Resource(e.resource) / e.limit
}

func (e *storageExceeded) Reset() {}

// resourceDepleted triggers when a named resource runs out. The first
// observed positive amount becomes the baseline for progress estimation.
type resourceDepleted struct {
	resource string
	baseline float64
	amount   float64
}

func newResourceDepleted(cfg Config) (Evaluator, error) {
	if cfg.Resource == "" {
		return nil, configErr(cfg.Type, "resource", "is required")
	}
	return &resourceDepleted{resource: cfg.Resource}, nil
}

func (e *resourceDepleted) Kind() string { return KindResourceDepleted }

func (e *resourceDepleted) Evaluate(snap sim.Snapshot) bool {
	e.amount = snap.Resource(e.resource)
	if e.baseline == 0 && e.amount > 0 {
		e.baseline = e.amount
	}
	return e.amount <= 0
}

func (e *resourceDepleted) Progress(sim.Snapshot) float64 {
	if e.amount <= 0 {
		return 1
	}
	if e.baseline <= 0 {
		return 0
	}
	return 1 - e.amount/e.baseline
}

func (e *resourceDepleted) Reset() {
	e.baseline = 0
	e.amount = 0
}

func (e *resourceDepleted) Aux() map[string]float64 {
	return map[string]float64{"amount": e.amount}
}
