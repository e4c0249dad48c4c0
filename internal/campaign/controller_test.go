package campaign

import (
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/outpost-campaign/internal/conditions"
	"github.com/vovakirdan/outpost-campaign/internal/levels"
	"github.com/vovakirdan/outpost-campaign/internal/sim"
)

// recordingSink keeps every published event for inspection.
type recordingSink struct {
	events []Event
}

func (s *recordingSink) Publish(ev Event) { s.events = append(s.events, ev) }

func (s *recordingSink) countOf(match func(Event) bool) int {
	n := 0
	for _, ev := range s.events {
		if match(ev) {
			n++
		}
	}
	return n
}

func (s *recordingSink) completedEvents() []LevelCompletedEvent {
	var out []LevelCompletedEvent
	for _, ev := range s.events {
		if e, ok := ev.(LevelCompletedEvent); ok {
			out = append(out, e)
		}
	}
	return out
}

func (s *recordingSink) failedEvents() []LevelFailedEvent {
	var out []LevelFailedEvent
	for _, ev := range s.events {
		if e, ok := ev.(LevelFailedEvent); ok {
			out = append(out, e)
		}
	}
	return out
}

func testRegistry(t *testing.T) *levels.Registry {
	t.Helper()
	reg, err := levels.NewRegistry(levels.Campaign{
		Name: "Test Campaign",
		Levels: []levels.Definition{
			{
				ID:      "first",
				Name:    "First Light",
				Enabled: true,
				WinConditions: []conditions.Config{
					{Type: conditions.KindBuildingCount, Building: sim.BuildingRefinery, Mode: sim.ModeFuel, Count: 1},
					{Type: conditions.KindConsecutiveTurns, Turns: 3, Requires: []string{"both_refineries_operational"}},
				},
				LoseConditions: []conditions.Config{
					{Type: conditions.KindFuelDepleted},
					{Type: conditions.KindTurnLimit, MaxTurns: 25},
				},
			},
			{
				ID:      "second",
				Name:    "Second Wind",
				Enabled: true,
				WinConditions: []conditions.Config{
					{Type: conditions.KindSurvival},
				},
				LoseConditions: []conditions.Config{
					{Type: conditions.KindFuelDepleted},
				},
			},
			{
				ID:      "hidden",
				Name:    "Hidden",
				Enabled: false,
				WinConditions: []conditions.Config{
					{Type: conditions.KindSurvival},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	return reg
}

// refinerySnap is a snapshot with both refinery modes built; active controls
// whether they are running this turn.
func refinerySnap(turn int, fuel float64, active bool) sim.Snapshot {
	return sim.Snapshot{
		Turn: turn,
		Buildings: []sim.Building{
			{Type: sim.BuildingRefinery, Mode: sim.ModeFuel, Active: active},
			{Type: sim.BuildingRefinery, Mode: sim.ModeMaterials, Active: active},
		},
		Resources: map[string]float64{sim.ResourceFuel: fuel},
	}
}

func emptySnap(turn int, fuel float64) sim.Snapshot {
	return sim.Snapshot{Turn: turn, Resources: map[string]float64{sim.ResourceFuel: fuel}}
}

// winSecondLevel drives the "second" level (survival win) to victory in one
// tick. The caller must have the level active already. No state assertion:
// winning the last level may push the controller straight to Idle.
func winSecondLevel(t *testing.T, c *Controller, turn int) {
	t.Helper()
	victories := c.Stats().Victories
	c.Tick(emptySnap(turn, 10))
	if c.Stats().Victories != victories+1 {
		t.Fatalf("expected victory on second level, state = %v", c.State())
	}
}

func TestVictoryTiming(t *testing.T) {
	sink := &recordingSink{}
	c := New(testRegistry(t), sink, nil)

	if !c.StartLevel("first") {
		t.Fatal("StartLevel(first) = false")
	}

	// Turn 1: nothing built. Turn 2: refineries built but idle.
	// Turns 3-5: both refineries run, streak 1, 2, 3.
	c.Tick(emptySnap(1, 40))
	c.Tick(refinerySnap(2, 38, false))
	for turn := 3; turn <= 4; turn++ {
		c.Tick(refinerySnap(turn, 40-float64(turn)*2, true))
		if c.State() != StateLevelActive {
			t.Fatalf("turn %d: state = %v, want active", turn, c.State())
		}
	}
	c.Tick(refinerySnap(5, 30, true))

	if c.State() != StateVictory {
		t.Fatalf("state = %v, want victory on turn 5", c.State())
	}

	completed := sink.completedEvents()
	if len(completed) != 1 {
		t.Fatalf("LevelCompletedEvent count = %d, want 1", len(completed))
	}
	if completed[0].Turn != 5 {
		t.Errorf("completion turn = %d, want 5", completed[0].Turn)
	}
	if completed[0].LevelID != "first" {
		t.Errorf("completion level = %q, want first", completed[0].LevelID)
	}

	// The streak condition first held on the victory turn.
	res := c.LastResult()
	if len(res.Win) != 2 {
		t.Fatalf("win statuses = %d, want 2", len(res.Win))
	}
	if res.Win[1].FirstMetTurn != 5 {
		t.Errorf("streak FirstMetTurn = %d, want 5", res.Win[1].FirstMetTurn)
	}

	// Further ticks are no-ops after the level ended.
	before := sink.countOf(func(ev Event) bool { _, ok := ev.(ConditionsCheckedEvent); return ok })
	c.Tick(refinerySnap(6, 28, true))
	after := sink.countOf(func(ev Event) bool { _, ok := ev.(ConditionsCheckedEvent); return ok })
	if before != after {
		t.Error("Tick after victory should not evaluate conditions")
	}
}

func TestDefeatOnFuelExhaustion(t *testing.T) {
	sink := &recordingSink{}
	c := New(testRegistry(t), sink, nil)
	c.StartLevel("first")

	fuel := 18.0
	for turn := 1; turn <= 9; turn++ {
		fuel -= 2
		c.Tick(emptySnap(turn, fuel))
	}

	if c.State() != StateDefeat {
		t.Fatalf("state = %v, want defeat", c.State())
	}
	failed := sink.failedEvents()
	if len(failed) != 1 {
		t.Fatalf("LevelFailedEvent count = %d, want 1", len(failed))
	}
	if failed[0].FailTurn != 9 {
		t.Errorf("FailTurn = %d, want 9", failed[0].FailTurn)
	}
	if got := c.Stats().Defeats; got != 1 {
		t.Errorf("Defeats = %d, want 1", got)
	}
}

func TestVictoryPrecedenceOverSimultaneousDefeat(t *testing.T) {
	// A second enabled level keeps the victory from finishing the whole
	// campaign, which would move the controller on to Idle.
	reg, err := levels.NewRegistry(levels.Campaign{
		Name: "edge",
		Levels: []levels.Definition{
			{
				ID:      "both",
				Name:    "Both Flip",
				Enabled: true,
				WinConditions: []conditions.Config{
					{Type: conditions.KindSurvival},
				},
				LoseConditions: []conditions.Config{
					{Type: conditions.KindTurnLimit, MaxTurns: 5},
				},
			},
			{
				ID:      "later",
				Name:    "Later",
				Enabled: true,
				WinConditions: []conditions.Config{
					{Type: conditions.KindSurvival},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}

	sink := &recordingSink{}
	c := New(reg, sink, nil)
	c.StartLevel("both")

	// Turn 6 satisfies the win condition and exceeds the turn limit at once.
	c.Tick(emptySnap(6, 10))

	if c.State() != StateVictory {
		t.Fatalf("state = %v, want victory (victory takes precedence)", c.State())
	}
	stats := c.Stats()
	if stats.Victories != 1 || stats.Defeats != 0 {
		t.Errorf("Victories/Defeats = %d/%d, want 1/0", stats.Victories, stats.Defeats)
	}
	if n := len(sink.failedEvents()); n != 0 {
		t.Errorf("LevelFailedEvent count = %d, want 0", n)
	}
	// The raw defeat edge is still observable for diagnostics.
	if n := sink.countOf(func(ev Event) bool { _, ok := ev.(DefeatEvent); return ok }); n != 1 {
		t.Errorf("DefeatEvent count = %d, want 1", n)
	}
}

func TestRestartResetsConditionsKeepsStats(t *testing.T) {
	sink := &recordingSink{}
	c := New(testRegistry(t), sink, nil)
	c.StartLevel("first")

	// Build a two-turn streak, then lose to fuel exhaustion.
	c.Tick(refinerySnap(1, 10, true))
	c.Tick(refinerySnap(2, 5, true))
	c.Tick(refinerySnap(3, 0, false))
	if c.State() != StateDefeat {
		t.Fatalf("state = %v, want defeat", c.State())
	}

	if !c.RestartCurrentLevel() {
		t.Fatal("RestartCurrentLevel() = false")
	}
	if c.State() != StateLevelActive {
		t.Fatalf("state after restart = %v, want active", c.State())
	}

	stats := c.Stats()
	if stats.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", stats.Attempts)
	}
	if stats.Defeats != 1 {
		t.Errorf("Defeats = %d, want 1 (restart keeps campaign stats)", stats.Defeats)
	}

	// The streak starts over: two held turns must not win.
	c.Tick(refinerySnap(1, 10, true))
	c.Tick(refinerySnap(2, 10, true))
	if c.State() != StateLevelActive {
		t.Error("streak must restart from zero after a restart")
	}
	c.Tick(refinerySnap(3, 10, true))
	if c.State() != StateVictory {
		t.Error("three fresh held turns should win after restart")
	}
}

func TestStartLevelRejections(t *testing.T) {
	c := New(testRegistry(t), nil, nil)

	cases := []struct {
		name string
		id   string
	}{
		{"unknown id", "nope"},
		{"disabled level", "hidden"},
		{"locked level", "second"},
	}
	for _, tc := range cases {
		if c.StartLevel(tc.id) {
			t.Errorf("%s: StartLevel(%q) = true, want false", tc.name, tc.id)
		}
		if c.State() != StateIdle {
			t.Errorf("%s: state mutated to %v", tc.name, c.State())
		}
		if c.Stats().Attempts != 0 {
			t.Errorf("%s: attempt counted on rejected start", tc.name)
		}
	}
}

func TestLevelUnlockAfterCompletion(t *testing.T) {
	c := New(testRegistry(t), nil, nil)
	c.StartLevel("first")
	c.Tick(refinerySnap(1, 10, true))
	c.Tick(refinerySnap(2, 10, true))
	c.Tick(refinerySnap(3, 10, true))
	if c.State() != StateVictory {
		t.Fatalf("state = %v, want victory", c.State())
	}

	if !c.StartLevel("second") {
		t.Error("second level should unlock once first is completed")
	}
}

func TestReplayDoesNotDoubleCountCompletion(t *testing.T) {
	sink := &recordingSink{}
	c := New(testRegistry(t), sink, nil)

	winFirst := func() {
		c.Tick(refinerySnap(1, 10, true))
		c.Tick(refinerySnap(2, 10, true))
		c.Tick(refinerySnap(3, 10, true))
		if c.State() != StateVictory {
			t.Fatalf("state = %v, want victory", c.State())
		}
	}

	c.StartLevel("first")
	winFirst()
	c.RestartCurrentLevel()
	winFirst()

	if got := c.CompletedLevels(); len(got) != 1 || got[0] != "first" {
		t.Errorf("CompletedLevels() = %v, want [first]", got)
	}
	if c.CampaignComplete() {
		t.Error("replaying one level must not complete a two-level campaign")
	}
	if got := c.CampaignProgress(); got != 0.5 {
		t.Errorf("CampaignProgress() = %v, want 0.5", got)
	}
	if c.Stats().Victories != 2 {
		t.Errorf("Victories = %d, want 2 (stats still accumulate)", c.Stats().Victories)
	}
}

func TestCampaignCompletion(t *testing.T) {
	sink := &recordingSink{}
	c := New(testRegistry(t), sink, nil)

	c.StartLevel("first")
	c.Tick(refinerySnap(1, 10, true))
	c.Tick(refinerySnap(2, 10, true))
	c.Tick(refinerySnap(3, 10, true))

	if !c.AdvanceToNextLevel() {
		t.Fatal("AdvanceToNextLevel() = false with a level remaining")
	}
	if c.CurrentLevelID() != "second" {
		t.Fatalf("advanced to %q, want second", c.CurrentLevelID())
	}
	winSecondLevel(t, c, 1)

	if !c.CampaignComplete() {
		t.Error("both enabled levels completed, campaign should be complete")
	}
	// The disabled level never counts toward the requirement.
	done := sink.countOf(func(ev Event) bool { _, ok := ev.(CampaignCompletedEvent); return ok })
	if done != 1 {
		t.Errorf("CampaignCompletedEvent count = %d, want 1", done)
	}
	if c.State() != StateIdle {
		t.Errorf("state after campaign completion = %v, want idle", c.State())
	}

	// Advancing past the last level must not re-announce completion.
	if c.AdvanceToNextLevel() {
		t.Error("AdvanceToNextLevel() = true past the last level")
	}
	done = sink.countOf(func(ev Event) bool { _, ok := ev.(CampaignCompletedEvent); return ok })
	if done != 1 {
		t.Errorf("CampaignCompletedEvent count after extra advance = %d, want 1", done)
	}
}

func TestStatsTiming(t *testing.T) {
	c := New(testRegistry(t), nil, nil)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	// First win takes 30 seconds.
	c.StartLevel("first")
	current = current.Add(30 * time.Second)
	c.Tick(refinerySnap(1, 10, true))
	c.Tick(refinerySnap(2, 10, true))
	c.Tick(refinerySnap(3, 10, true))

	// Second win takes 10 seconds.
	c.RestartCurrentLevel()
	start := current
	current = start.Add(10 * time.Second)
	c.Tick(refinerySnap(1, 10, true))
	c.Tick(refinerySnap(2, 10, true))
	c.Tick(refinerySnap(3, 10, true))

	stats := c.Stats()
	if stats.TotalCompletion != 40*time.Second {
		t.Errorf("TotalCompletion = %v, want 40s", stats.TotalCompletion)
	}
	if stats.AverageCompletion != 20*time.Second {
		t.Errorf("AverageCompletion = %v, want 20s", stats.AverageCompletion)
	}
	if stats.FastestCompletion != 10*time.Second {
		t.Errorf("FastestCompletion = %v, want 10s", stats.FastestCompletion)
	}
}

// failingRecorder always errors; recording failures must stay diagnostics.
type failingRecorder struct{}

func (failingRecorder) RecordAttempt(AttemptRecord) error {
	return errors.New("disk full")
}

func TestRecorderFailureDoesNotBlockVictory(t *testing.T) {
	c := New(testRegistry(t), nil, nil)
	c.SetRecorder(failingRecorder{})

	c.StartLevel("first")
	c.Tick(refinerySnap(1, 10, true))
	c.Tick(refinerySnap(2, 10, true))
	c.Tick(refinerySnap(3, 10, true))

	if c.State() != StateVictory {
		t.Errorf("state = %v, want victory despite recorder failure", c.State())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := New(testRegistry(t), nil, nil)
	c.StartLevel("first")
	c.Tick(refinerySnap(1, 10, true))
	c.Tick(refinerySnap(2, 10, true))
	c.Tick(refinerySnap(3, 10, true))

	saved := c.SaveData()
	if saved.Version != SaveVersion {
		t.Errorf("Version = %d, want %d", saved.Version, SaveVersion)
	}
	if len(saved.Completed) != 1 || saved.Completed[0] != "first" {
		t.Errorf("Completed = %v, want [first]", saved.Completed)
	}

	data, err := MarshalSave(saved)
	if err != nil {
		t.Fatalf("MarshalSave() error: %v", err)
	}
	decoded, err := UnmarshalSave(data)
	if err != nil {
		t.Fatalf("UnmarshalSave() error: %v", err)
	}

	restored := New(testRegistry(t), nil, nil)
	if err := restored.LoadSaveData(decoded); err != nil {
		t.Fatalf("LoadSaveData() error: %v", err)
	}
	if restored.State() != StateIdle {
		t.Errorf("restored state = %v, want idle", restored.State())
	}
	if got := restored.CompletedLevels(); len(got) != 1 || got[0] != "first" {
		t.Errorf("restored CompletedLevels() = %v, want [first]", got)
	}
	if restored.Stats().Victories != 1 {
		t.Errorf("restored Victories = %d, want 1", restored.Stats().Victories)
	}
	// The unlock survives the round trip.
	if !restored.StartLevel("second") {
		t.Error("second level should be unlocked after restoring")
	}
}

func TestLoadSaveDataVersionMismatch(t *testing.T) {
	c := New(testRegistry(t), nil, nil)
	c.StartLevel("first")
	c.Tick(refinerySnap(1, 10, true))
	c.Tick(refinerySnap(2, 10, true))
	c.Tick(refinerySnap(3, 10, true))

	err := c.LoadSaveData(SaveData{Version: SaveVersion + 1})
	if !errors.Is(err, ErrIncompatibleSave) {
		t.Fatalf("LoadSaveData() error = %v, want ErrIncompatibleSave", err)
	}

	// Controller state must be untouched.
	if c.State() != StateVictory {
		t.Errorf("state = %v, want victory preserved", c.State())
	}
	if got := c.CompletedLevels(); len(got) != 1 {
		t.Errorf("CompletedLevels() = %v, want [first] preserved", got)
	}

	if _, err := UnmarshalSave([]byte(`{"version":99}`)); !errors.Is(err, ErrIncompatibleSave) {
		t.Errorf("UnmarshalSave() error = %v, want ErrIncompatibleSave", err)
	}
}
