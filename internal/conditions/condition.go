package conditions

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/outpost-campaign/internal/sim"
)

// LastCheck is a snapshot of the most recent evaluation of a condition.
// Aux carries variant-specific diagnostics (e.g. current fuel, streak).
type LastCheck struct {
	Turn     int
	Result   bool
	Progress float64
	Aux      map[string]float64
}

// Condition pairs an evaluator with the shared historical state tracked
// for every criterion. The met flag is always the output of the last
// evaluation; it is never set directly.
type Condition struct {
	cfg    Config
	eval   Evaluator
	label  string
	logger *log.Logger

	active       bool
	met          bool
	checkCount   int
	firstMetTurn int // -1 until first satisfied; kept once set
	last         LastCheck
}

// New builds a condition from config via the kind registry.
// Returns a *ConfigError when required fields are missing or out of range.
func New(cfg Config, logger *log.Logger) (*Condition, error) {
	build, ok := lookupBuilder(cfg.Type)
	if !ok {
		return nil, configErr(cfg.Type, "type", "is not a registered condition kind")
	}

	eval, err := build(cfg)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.Default()
	}

	label := cfg.Label
	if label == "" {
		label = describe(cfg)
	}

	return &Condition{
		cfg:          cfg,
		eval:         eval,
		label:        label,
		logger:       logger,
		active:       true,
		firstMetTurn: -1,
	}, nil
}

// Check runs one evaluation against the snapshot. Inactive conditions are
// skipped and keep returning their last result.
func (c *Condition) Check(snap sim.Snapshot) bool {
	if !c.active {
		return c.met
	}

	c.checkCount++
	met := c.eval.Evaluate(snap)

	if met && !c.met {
		if c.firstMetTurn < 0 {
			c.firstMetTurn = snap.Turn
		}
		c.logger.Debug("condition met", "kind", c.cfg.Type, "label", c.label, "turn", snap.Turn)
	} else if !met && c.met {
		c.logger.Debug("condition lost", "kind", c.cfg.Type, "label", c.label, "turn", snap.Turn)
	}
	c.met = met

	last := LastCheck{
		Turn:     snap.Turn,
		Result:   met,
		Progress: clamp01(c.eval.Progress(snap)),
	}
	if ar, ok := c.eval.(auxReporter); ok {
		last.Aux = ar.Aux()
	}
	c.last = last

	return met
}

// Reset zeroes all historical state without re-validating configuration.
func (c *Condition) Reset() {
	c.met = false
	c.checkCount = 0
	c.firstMetTurn = -1
	c.last = LastCheck{}
	c.eval.Reset()
}

// SetActive toggles evaluation. A deactivated condition retains its last
// result until reactivated.
func (c *Condition) SetActive(active bool) { c.active = active }

// Kind returns the condition's config type tag.
func (c *Condition) Kind() string { return c.cfg.Type }

// Label returns the display name.
func (c *Condition) Label() string { return c.label }

// Met reports the result of the most recent evaluation.
func (c *Condition) Met() bool { return c.met }

// Active reports whether the condition is being evaluated.
func (c *Condition) Active() bool { return c.active }

// CheckCount returns how many evaluations have been performed.
func (c *Condition) CheckCount() int { return c.checkCount }

// FirstMetTurn returns the turn the condition first became met.
// ok is false if it has never been met since the last reset.
func (c *Condition) FirstMetTurn() (turn int, ok bool) {
	return c.firstMetTurn, c.firstMetTurn >= 0
}

// Last returns the snapshot of the most recent check.
func (c *Condition) Last() LastCheck { return c.last }

// Status summarizes the condition for aggregation and UI.
func (c *Condition) Status() CheckStatus {
	return CheckStatus{
		Kind:         c.cfg.Type,
		Label:        c.label,
		Met:          c.met,
		Active:       c.active,
		Progress:     c.last.Progress,
		CheckCount:   c.checkCount,
		FirstMetTurn: c.firstMetTurn,
	}
}

// describe derives a human-readable label from config fields.
func describe(cfg Config) string {
	switch cfg.Type {
	case KindBuildingCount:
		target := cfg.Building
		if cfg.Mode != "" {
			target += " (" + cfg.Mode + ")"
		}
		switch cfg.Comparator {
		case CompareExact:
			return fmt.Sprintf("exactly %d %s", cfg.Count, target)
		case CompareTotal:
			return fmt.Sprintf("%d buildings total", cfg.Count)
		default:
			return fmt.Sprintf("at least %d %s", cfg.Count, target)
		}
	case KindBuildingActive:
		return cfg.Predicate
	case KindConsecutiveTurns:
		return fmt.Sprintf("%d consecutive turns", cfg.Turns)
	case KindSurvival:
		return "survive"
	case KindFuelDepleted:
		return "fuel depleted"
	case KindTurnLimit:
		return fmt.Sprintf("turn limit %d", cfg.MaxTurns)
	case KindStorageExceeded:
		return fmt.Sprintf("%s over %.0f", cfg.Resource, cfg.Limit)
	case KindResourceDepleted:
		return cfg.Resource + " depleted"
	default:
		return cfg.Type
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
