package conditions

import "github.com/vovakirdan/outpost-campaign/internal/sim"

func init() {
	RegisterKind(KindConsecutiveTurns, newConsecutiveTurns)
	RegisterKind(KindSurvival, newSurvival)
	RegisterKind(KindTurnLimit, newTurnLimit)
}

// consecutiveTurns tracks an uninterrupted streak of turns on which every
// required predicate holds. The streak resets to zero the turn any
// requirement fails, so the result is live: a broken streak un-meets the
// condition until the target is reached again.
type consecutiveTurns struct {
	target int
	names  []string
	preds  []Predicate
	streak int
}

func newConsecutiveTurns(cfg Config) (Evaluator, error) {
	if cfg.Turns <= 0 {
		return nil, configErr(cfg.Type, "turns", "must be positive")
	}
	if len(cfg.Requires) == 0 {
		return nil, configErr(cfg.Type, "requires", "must name at least one predicate")
	}
	preds, err := resolvePredicates(cfg.Type, cfg.Requires)
	if err != nil {
		return nil, err
	}
	return &consecutiveTurns{target: cfg.Turns, names: cfg.Requires, preds: preds}, nil
}

func (e *consecutiveTurns) Kind() string { return KindConsecutiveTurns }

func (e *consecutiveTurns) Evaluate(snap sim.Snapshot) bool {
	if allHold(e.preds, snap) {
		e.streak++
	} else {
		e.streak = 0
	}
	return e.streak >= e.target
}

func (e *consecutiveTurns) Progress(sim.Snapshot) float64 {
	return float64(e.streak) / float64(e.target)
}

func (e *consecutiveTurns) Reset() { e.streak = 0 }

func (e *consecutiveTurns) Aux() map[string]float64 {
	return map[string]float64{"streak": float64(e.streak)}
}

// survival holds while fuel remains and every configured extra requirement
// is satisfied. Progress is binary.
type survival struct {
	names []string
	preds []Predicate
}

func newSurvival(cfg Config) (Evaluator, error) {
	preds, err := resolvePredicates(cfg.Type, cfg.Requires)
	if err != nil {
		return nil, err
	}
	return &survival{names: cfg.Requires, preds: preds}, nil
}

func (e *survival) Kind() string { return KindSurvival }

func (e *survival) Evaluate(snap sim.Snapshot) bool {
	return snap.Resource(sim.ResourceFuel) > 0 && allHold(e.preds, snap)
}

func (e *survival) Progress(snap sim.Snapshot) float64 {
	if e.Evaluate(snap) {
		return 1
	}
	return 0
}

func (e *survival) Reset() {}

// turnLimit triggers once the turn number strictly exceeds the maximum.
// Reaching the limit exactly is still within bounds.
type turnLimit struct {
	max int
}

func newTurnLimit(cfg Config) (Evaluator, error) {
	if cfg.MaxTurns <= 0 {
		return nil, configErr(cfg.Type, "max_turns", "must be positive")
	}
	return &turnLimit{max: cfg.MaxTurns}, nil
}

func (e *turnLimit) Kind() string { return KindTurnLimit }

func (e *turnLimit) Evaluate(snap sim.Snapshot) bool {
	return snap.Turn > e.max
}

func (e *turnLimit) Progress(snap sim.Snapshot) float64 {
	return float64(snap.Turn) / float64(e.max)
}

func (e *turnLimit) Reset() {}

func resolvePredicates(kind string, names []string) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(names))
	for _, name := range names {
		p, ok := LookupPredicate(name)
		if !ok {
			return nil, configErr(kind, "requires", "references unregistered predicate: "+name)
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func allHold(preds []Predicate, snap sim.Snapshot) bool {
	for _, p := range preds {
		if !p(snap) {
			return false
		}
	}
	return true
}
