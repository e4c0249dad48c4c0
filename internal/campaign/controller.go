package campaign

import (
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/outpost-campaign/internal/conditions"
	"github.com/vovakirdan/outpost-campaign/internal/levels"
	"github.com/vovakirdan/outpost-campaign/internal/sim"
)

// AdvanceDelay is the celebratory pause drivers should apply between a
// level completion and the auto-advance to the next level. The controller
// itself is timer-free; callers invoke AdvanceToNextLevel after the delay.
const AdvanceDelay = 3 * time.Second

// State is the controller's position in the level lifecycle.
type State int

const (
	StateIdle State = iota
	StateLevelActive
	StateVictory
	StateDefeat
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLevelActive:
		return "active"
	case StateVictory:
		return "victory"
	case StateDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Stats accumulates across every level attempt of the campaign. Resetting
// or restarting a level never touches these.
type Stats struct {
	Attempts          int           `json:"attempts"`
	Victories         int           `json:"victories"`
	Defeats           int           `json:"defeats"`
	TotalPlayTime     time.Duration `json:"total_play_time"`
	TotalCompletion   time.Duration `json:"total_completion"` // sum over victories
	AverageCompletion time.Duration `json:"average_completion"`
	FastestCompletion time.Duration `json:"fastest_completion"` // 0 until first victory
}

// AttemptRecord describes one finished level attempt for persistence.
type AttemptRecord struct {
	LevelID  string
	Outcome  string // "victory" or "defeat"
	Turns    int
	Duration time.Duration
}

// Attempt outcomes.
const (
	OutcomeVictory = "victory"
	OutcomeDefeat  = "defeat"
)

// AttemptRecorder persists finished attempts. The controller treats
// recording failures as diagnostics, never as engine errors.
type AttemptRecorder interface {
	RecordAttempt(rec AttemptRecord) error
}

// Controller owns the active level and its condition set, and drives the
// Idle -> LevelActive -> Victory|Defeat -> LevelActive lifecycle.
// It is single-threaded: one Tick per simulated turn, run to completion.
type Controller struct {
	registry *levels.Registry
	sink     Sink
	recorder AttemptRecorder
	logger   *log.Logger
	now      func() time.Time

	set        *conditions.Set
	state      State
	currentID  string
	current    levels.Definition
	levelStart time.Time
	lastResult conditions.Result

	completed    map[string]struct{}
	stats        Stats
	campaignDone bool
}

// New creates a controller over the given level registry. sink may be nil
// when no one observes events; logger may be nil.
func New(registry *levels.Registry, sink Sink, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		registry:  registry,
		sink:      sink,
		logger:    logger,
		now:       time.Now,
		completed: make(map[string]struct{}),
	}
}

// SetRecorder attaches an attempt recorder (e.g. the SQLite store).
func (c *Controller) SetRecorder(r AttemptRecorder) { c.recorder = r }

// StartLevel begins the level with the given id. It returns false without
// mutating any state when the id is unknown, disabled or still locked.
// Each successful call counts one attempt.
func (c *Controller) StartLevel(id string) bool {
	def, ok := c.registry.Get(id)
	if !ok || !def.Enabled || !c.unlocked(id) {
		c.logger.Warn("cannot start level", "level", id, "known", ok)
		return false
	}

	set := conditions.NewSet(setListener{c}, c.logger)
	set.Load(def.WinConditions, def.LoseConditions)

	c.set = set
	c.current = def
	c.currentID = id
	c.levelStart = c.now()
	c.lastResult = conditions.Result{}
	c.state = StateLevelActive
	c.stats.Attempts++

	c.logger.Info("level started", "level", id, "attempt", c.stats.Attempts)
	c.publish(LevelStartedEvent{LevelID: id, LevelName: def.Name, Attempt: c.stats.Attempts})
	return true
}

// unlocked reports whether a level may be started: the first enabled level
// always is, later levels unlock once the previous enabled one is completed.
func (c *Controller) unlocked(id string) bool {
	prev, ok := c.registry.PrevEnabled(id)
	if !ok {
		return true
	}
	_, done := c.completed[prev]
	return done
}

// Tick evaluates the active level's conditions against one snapshot.
// It is a no-op outside LevelActive. Victory and defeat handling run
// synchronously from the condition set's edge notifications.
func (c *Controller) Tick(snap sim.Snapshot) {
	if c.state != StateLevelActive {
		return
	}

	res := c.set.CheckAll(snap)
	c.lastResult = res
	c.publish(ConditionsCheckedEvent{LevelID: c.currentID, Result: res})
}

// RestartCurrentLevel starts the current level over: conditions fully
// reset, a fresh attempt counted, campaign statistics preserved.
func (c *Controller) RestartCurrentLevel() bool {
	if c.currentID == "" {
		return false
	}
	return c.StartLevel(c.currentID)
}

// AdvanceToNextLevel starts the next enabled level. When none remains it
// reports campaign completion instead and returns false.
func (c *Controller) AdvanceToNextLevel() bool {
	if c.currentID == "" {
		return false
	}
	next, ok := c.registry.NextEnabled(c.currentID)
	if !ok {
		c.finishCampaign()
		return false
	}
	return c.StartLevel(next)
}

// setListener adapts the controller to conditions.Listener without
// exporting the callbacks on Controller itself.
type setListener struct {
	c *Controller
}

func (l setListener) StateChanged(res conditions.Result) {
	l.c.publish(StateChangedEvent{LevelID: l.c.currentID, Result: res})
}

func (l setListener) VictoryAchieved(res conditions.Result) {
	l.c.onVictory(res)
}

func (l setListener) DefeatTriggered(res conditions.Result) {
	l.c.onDefeat(res)
}

func (c *Controller) onVictory(res conditions.Result) {
	if c.state != StateLevelActive {
		return
	}

	elapsed := c.now().Sub(c.levelStart)
	c.stats.Victories++
	c.stats.TotalPlayTime += elapsed
	c.stats.TotalCompletion += elapsed
	c.stats.AverageCompletion = c.stats.TotalCompletion / time.Duration(c.stats.Victories)
	if c.stats.FastestCompletion == 0 || elapsed < c.stats.FastestCompletion {
		c.stats.FastestCompletion = elapsed
	}
	c.completed[c.currentID] = struct{}{}
	c.state = StateVictory

	c.logger.Info("level completed",
		"level", c.currentID, "turn", res.Turn, "duration", elapsed)
	c.record(AttemptRecord{
		LevelID:  c.currentID,
		Outcome:  OutcomeVictory,
		Turns:    res.Turn,
		Duration: elapsed,
	})

	c.publish(VictoryEvent{LevelID: c.currentID, Result: res})
	c.publish(LevelCompletedEvent{
		LevelID:   c.currentID,
		LevelName: c.current.Name,
		Turn:      res.Turn,
		Duration:  elapsed,
		Stats:     c.stats,
	})

	if c.CampaignComplete() {
		c.finishCampaign()
	}
}

func (c *Controller) onDefeat(res conditions.Result) {
	// A level that was just won on the same tick is not retroactively
	// failed: victory takes precedence.
	if c.state != StateLevelActive {
		c.publish(DefeatEvent{LevelID: c.currentID, Result: res})
		return
	}

	elapsed := c.now().Sub(c.levelStart)
	c.stats.Defeats++
	c.stats.TotalPlayTime += elapsed
	c.state = StateDefeat

	c.logger.Info("level failed", "level", c.currentID, "turn", res.Turn)
	c.record(AttemptRecord{
		LevelID:  c.currentID,
		Outcome:  OutcomeDefeat,
		Turns:    res.Turn,
		Duration: elapsed,
	})

	c.publish(DefeatEvent{LevelID: c.currentID, Result: res})
	c.publish(LevelFailedEvent{
		LevelID:   c.currentID,
		LevelName: c.current.Name,
		FailTurn:  res.Turn,
		Stats:     c.stats,
	})
}

func (c *Controller) finishCampaign() {
	if c.campaignDone {
		return
	}
	c.campaignDone = true
	c.state = StateIdle
	c.logger.Info("campaign completed",
		"completed", len(c.completed), "enabled", c.registry.EnabledCount())
	c.publish(CampaignCompletedEvent{
		Completed: len(c.completed),
		Enabled:   c.registry.EnabledCount(),
		Stats:     c.stats,
	})
}

func (c *Controller) record(rec AttemptRecord) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordAttempt(rec); err != nil {
		c.logger.Warn("could not record attempt", "level", rec.LevelID, "error", err)
	}
}

func (c *Controller) publish(ev Event) {
	if c.sink != nil {
		c.sink.Publish(ev)
	}
}

// CampaignComplete reports whether enough distinct levels have been
// completed. The comparison is count-based against the enabled level
// count; completed ids are a true set, so replays never double-count.
func (c *Controller) CampaignComplete() bool {
	return len(c.completed) >= c.registry.EnabledCount()
}

// CampaignProgress returns the completed fraction of enabled levels.
func (c *Controller) CampaignProgress() float64 {
	total := c.registry.EnabledCount()
	if total == 0 {
		return 0
	}
	return float64(len(c.completed)) / float64(total)
}

// State returns the controller's lifecycle state.
func (c *Controller) State() State { return c.state }

// CurrentLevelID returns the active (or last active) level id.
func (c *Controller) CurrentLevelID() string { return c.currentID }

// CurrentLevel returns the resolved definition of the current level.
func (c *Controller) CurrentLevel() (levels.Definition, bool) {
	if c.currentID == "" {
		return levels.Definition{}, false
	}
	return c.current, true
}

// Stats returns a copy of the cumulative campaign statistics.
func (c *Controller) Stats() Stats { return c.stats }

// LastResult returns the aggregate result of the most recent Tick.
func (c *Controller) LastResult() conditions.Result { return c.lastResult }

// CompletedLevels returns the completed level ids in sorted order.
func (c *Controller) CompletedLevels() []string {
	out := make([]string, 0, len(c.completed))
	for id := range c.completed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LevelStatus is the query surface for UIs: where the campaign stands and
// how every condition of the active level is doing.
type LevelStatus struct {
	LevelID         string
	LevelName       string
	State           State
	Active          bool
	Turn            int
	WinProgress     float64
	Win             []conditions.CheckStatus
	Lose            []conditions.CheckStatus
	CampaignPercent float64
	Stats           Stats
}

// Status summarizes the current level and campaign position.
func (c *Controller) Status() LevelStatus {
	return LevelStatus{
		LevelID:         c.currentID,
		LevelName:       c.current.Name,
		State:           c.state,
		Active:          c.state == StateLevelActive,
		Turn:            c.lastResult.Turn,
		WinProgress:     c.lastResult.WinProgress,
		Win:             c.lastResult.Win,
		Lose:            c.lastResult.Lose,
		CampaignPercent: c.CampaignProgress() * 100,
		Stats:           c.stats,
	}
}

// LevelHistory is one completed level in History output.
type LevelHistory struct {
	ID   string
	Name string
}

// History lists completed levels in campaign order.
func (c *Controller) History() []LevelHistory {
	var out []LevelHistory
	for _, def := range c.registry.List() {
		if _, done := c.completed[def.ID]; done {
			out = append(out, LevelHistory{ID: def.ID, Name: def.Name})
		}
	}
	return out
}
