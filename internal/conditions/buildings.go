package conditions

import "github.com/vovakirdan/outpost-campaign/internal/sim"

func init() {
	RegisterKind(KindBuildingCount, newBuildingCount)
	RegisterKind(KindBuildingActive, newBuildingActive)
}

// buildingCount checks the number of buildings matching a type and optional
// production mode against a configured comparator.
type buildingCount struct {
	building   string
	mode       string
	comparator string
	count      int
}

func newBuildingCount(cfg Config) (Evaluator, error) {
	comparator := cfg.Comparator
	if comparator == "" {
		comparator = CompareMin
	}
	switch comparator {
	case CompareMin, CompareExact, CompareTotal:
	default:
		return nil, configErr(cfg.Type, "comparator", "must be min, exact or total")
	}
	if cfg.Count <= 0 {
		return nil, configErr(cfg.Type, "count", "must be positive")
	}
	if comparator != CompareTotal && cfg.Building == "" {
		return nil, configErr(cfg.Type, "building", "is required")
	}

	return &buildingCount{
		building:   cfg.Building,
		mode:       cfg.Mode,
		comparator: comparator,
		count:      cfg.Count,
	}, nil
}

func (e *buildingCount) Kind() string { return KindBuildingCount }

func (e *buildingCount) current(snap sim.Snapshot) int {
	if e.comparator == CompareTotal {
		return snap.TotalBuildings()
	}
	return snap.CountBuildings(e.building, e.mode)
}

func (e *buildingCount) Evaluate(snap sim.Snapshot) bool {
	n := e.current(snap)
	if e.comparator == CompareExact {
		return n == e.count
	}
	return n >= e.count
}

func (e *buildingCount) Progress(snap sim.Snapshot) float64 {
	return float64(e.current(snap)) / float64(e.count)
}

func (e *buildingCount) Reset() {}

// buildingActive checks a named predicate describing an "operational"
// requirement, e.g. "both_refineries_operational". The predicate key is
// data, so levels can reference requirements the code never names.
type buildingActive struct {
	name string
	pred Predicate
}

func newBuildingActive(cfg Config) (Evaluator, error) {
	if cfg.Predicate == "" {
		return nil, configErr(cfg.Type, "predicate", "is required")
	}
	pred, ok := LookupPredicate(cfg.Predicate)
	if !ok {
		return nil, configErr(cfg.Type, "predicate", "is not registered: "+cfg.Predicate)
	}
	return &buildingActive{name: cfg.Predicate, pred: pred}, nil
}

func (e *buildingActive) Kind() string { return KindBuildingActive }

func (e *buildingActive) Evaluate(snap sim.Snapshot) bool {
	return e.pred(snap)
}

func (e *buildingActive) Progress(snap sim.Snapshot) float64 {
	if e.pred(snap) {
		return 1
	}
	return 0
}

func (e *buildingActive) Reset() {}
