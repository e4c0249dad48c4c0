package conditions

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/outpost-campaign/internal/sim"
)

// historyCap bounds the aggregate check history kept per set.
const historyCap = 10

// CheckStatus summarizes one condition within an aggregate result.
type CheckStatus struct {
	Kind         string
	Label        string
	Met          bool
	Active       bool
	Progress     float64
	CheckCount   int
	FirstMetTurn int // -1 if never met
}

// Result is the outcome of one CheckAll pass.
type Result struct {
	Turn           int
	Victory        bool
	Defeat         bool
	VictoryChanged bool
	DefeatChanged  bool
	WinProgress    float64
	Win            []CheckStatus
	Lose           []CheckStatus
}

// Listener receives edge-triggered notifications from a Set. Callbacks run
// synchronously inside CheckAll; calling back into CheckAll from a callback
// is a programming error. VictoryAchieved is invoked before DefeatTriggered
// when both flags flip on the same turn, so the recipient can honor victory
// precedence.
type Listener interface {
	StateChanged(res Result)
	VictoryAchieved(res Result)
	DefeatTriggered(res Result)
}

// Set aggregates one level's win conditions (all must hold) and lose
// conditions (any may trigger). A Set belongs to exactly one caller; it is
// not safe for concurrent use.
type Set struct {
	win  []*Condition
	lose []*Condition

	lastWin  bool
	lastLose bool
	history  []Result

	listener Listener
	logger   *log.Logger
	checking bool
}

// NewSet creates an empty set. listener may be nil.
func NewSet(listener Listener, logger *log.Logger) *Set {
	if logger == nil {
		logger = log.Default()
	}
	return &Set{listener: listener, logger: logger}
}

// Load constructs the set's conditions from configs. A malformed config
// is logged and skipped so a single bad condition cannot make the level
// unplayable; the remaining conditions still load.
func (s *Set) Load(winConfigs, loseConfigs []Config) {
	s.win = s.buildAll(winConfigs, "win")
	s.lose = s.buildAll(loseConfigs, "lose")
	s.lastWin = false
	s.lastLose = false
	s.history = nil
}

func (s *Set) buildAll(configs []Config, group string) []*Condition {
	conds := make([]*Condition, 0, len(configs))
	for _, cfg := range configs {
		c, err := New(cfg, s.logger)
		if err != nil {
			s.logger.Warn("skipping malformed condition",
				"group", group, "kind", cfg.Type, "error", err)
			continue
		}
		conds = append(conds, c)
	}
	return conds
}

// CheckAll evaluates every condition against the snapshot and aggregates.
// Victory requires a non-empty win list with every condition met; an
// unconfigured level is never vacuously won. Defeat requires any lose
// condition met. Notifications fire only on flag transitions.
func (s *Set) CheckAll(snap sim.Snapshot) Result {
	if s.checking {
		panic("conditions: reentrant CheckAll")
	}
	s.checking = true
	defer func() { s.checking = false }()

	res := Result{Turn: snap.Turn}

	allWin := true
	for _, c := range s.win {
		if !c.Check(snap) {
			allWin = false
		}
		res.Win = append(res.Win, c.Status())
	}
	res.Victory = len(s.win) > 0 && allWin

	for _, c := range s.lose {
		if c.Check(snap) {
			res.Defeat = true
		}
		res.Lose = append(res.Lose, c.Status())
	}

	if len(res.Win) == 0 {
		res.WinProgress = 1
	} else {
		sum := 0.0
		for _, st := range res.Win {
			sum += st.Progress
		}
		res.WinProgress = sum / float64(len(res.Win))
	}

	res.VictoryChanged = res.Victory != s.lastWin
	res.DefeatChanged = res.Defeat != s.lastLose

	if s.listener != nil {
		if res.VictoryChanged || res.DefeatChanged {
			s.listener.StateChanged(res)
		}
		if res.VictoryChanged && res.Victory {
			s.listener.VictoryAchieved(res)
		}
		if res.DefeatChanged && res.Defeat {
			s.listener.DefeatTriggered(res)
		}
	}

	s.history = append(s.history, res)
	if len(s.history) > historyCap {
		s.history = s.history[1:]
	}

	s.lastWin = res.Victory
	s.lastLose = res.Defeat

	return res
}

// Reset clears every condition's historical state and the aggregate flags.
func (s *Set) Reset() {
	for _, c := range s.win {
		c.Reset()
	}
	for _, c := range s.lose {
		c.Reset()
	}
	s.lastWin = false
	s.lastLose = false
	s.history = nil
}

// History returns the bounded aggregate check history, oldest first.
func (s *Set) History() []Result {
	out := make([]Result, len(s.history))
	copy(out, s.history)
	return out
}

// WinConditions returns the loaded win conditions in config order.
func (s *Set) WinConditions() []*Condition { return s.win }

// LoseConditions returns the loaded lose conditions in config order.
func (s *Set) LoseConditions() []*Condition { return s.lose }
