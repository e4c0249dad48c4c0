package conditions

import (
	"testing"

	"github.com/vovakirdan/outpost-campaign/internal/sim"
)

// countingListener tallies notifications for edge-trigger assertions.
type countingListener struct {
	stateChanges int
	victories    int
	defeats      int
	lastResult   Result
}

func (l *countingListener) StateChanged(res Result)    { l.stateChanges++; l.lastResult = res }
func (l *countingListener) VictoryAchieved(res Result) { l.victories++ }
func (l *countingListener) DefeatTriggered(res Result) { l.defeats++ }

func fuelSnapshot(turn int, fuel float64) sim.Snapshot {
	return sim.Snapshot{Turn: turn, Resources: map[string]float64{sim.ResourceFuel: fuel}}
}

func TestEmptyWinListNeverWins(t *testing.T) {
	set := NewSet(nil, nil)
	set.Load(nil, []Config{{Type: KindTurnLimit, MaxTurns: 100}})

	for turn := 1; turn <= 5; turn++ {
		res := set.CheckAll(fuelSnapshot(turn, 10))
		if res.Victory {
			t.Fatalf("turn %d: empty win list must never yield victory", turn)
		}
		if res.WinProgress != 1 {
			t.Errorf("turn %d: WinProgress = %v, want 1 for empty win list", turn, res.WinProgress)
		}
	}
}

func TestEmptyLoseListNeverLoses(t *testing.T) {
	set := NewSet(nil, nil)
	set.Load([]Config{{Type: KindSurvival}}, nil)

	res := set.CheckAll(fuelSnapshot(1, 0))
	if res.Defeat {
		t.Error("empty lose list must never yield defeat")
	}
}

func TestVictoryRequiresAllWinConditions(t *testing.T) {
	set := NewSet(nil, nil)
	set.Load([]Config{
		{Type: KindSurvival},
		{Type: KindTurnLimit, MaxTurns: 3}, // met only after turn 3
	}, nil)

	res := set.CheckAll(fuelSnapshot(2, 10))
	if res.Victory {
		t.Error("victory requires every win condition")
	}
	res = set.CheckAll(fuelSnapshot(4, 10))
	if !res.Victory {
		t.Error("all win conditions met should yield victory")
	}
}

func TestDefeatOnAnyLoseCondition(t *testing.T) {
	set := NewSet(nil, nil)
	set.Load(nil, []Config{
		{Type: KindFuelDepleted},
		{Type: KindTurnLimit, MaxTurns: 100},
	})

	res := set.CheckAll(fuelSnapshot(1, 10))
	if res.Defeat {
		t.Error("no lose condition met, defeat should be false")
	}
	res = set.CheckAll(fuelSnapshot(2, 0))
	if !res.Defeat {
		t.Error("one met lose condition should yield defeat")
	}
}

func TestEdgeTriggeredNotifications(t *testing.T) {
	listener := &countingListener{}
	set := NewSet(listener, nil)
	set.Load(
		[]Config{{Type: KindSurvival}},
		[]Config{{Type: KindFuelDepleted}},
	)

	// Victory holds for three ticks: one notification.
	for turn := 1; turn <= 3; turn++ {
		set.CheckAll(fuelSnapshot(turn, 10))
	}
	if listener.victories != 1 {
		t.Errorf("victories = %d, want 1 (edge-triggered)", listener.victories)
	}

	// Transition back to false, then true again: one more notification.
	set.CheckAll(fuelSnapshot(4, 0)) // survival fails, fuel depleted
	set.CheckAll(fuelSnapshot(5, 0))
	if listener.defeats != 1 {
		t.Errorf("defeats = %d, want 1 (edge-triggered)", listener.defeats)
	}

	set.CheckAll(fuelSnapshot(6, 10))
	set.CheckAll(fuelSnapshot(7, 10))
	if listener.victories != 2 {
		t.Errorf("victories after re-transition = %d, want 2", listener.victories)
	}
}

func TestWinProgressIsMean(t *testing.T) {
	set := NewSet(nil, nil)
	set.Load([]Config{
		{Type: KindSurvival},                // met: progress 1
		{Type: KindTurnLimit, MaxTurns: 10}, // turn 5: progress 0.5
	}, nil)

	res := set.CheckAll(fuelSnapshot(5, 10))
	if res.WinProgress != 0.75 {
		t.Errorf("WinProgress = %v, want 0.75", res.WinProgress)
	}
}

func TestMalformedConditionSkipped(t *testing.T) {
	set := NewSet(nil, nil)
	set.Load([]Config{
		{Type: KindConsecutiveTurns}, // invalid: no turns, no requires
		{Type: KindSurvival},
	}, []Config{
		{Type: "bogus"},
		{Type: KindFuelDepleted},
	})

	if got := len(set.WinConditions()); got != 1 {
		t.Errorf("win conditions loaded = %d, want 1 (malformed skipped)", got)
	}
	if got := len(set.LoseConditions()); got != 1 {
		t.Errorf("lose conditions loaded = %d, want 1 (malformed skipped)", got)
	}

	// The level must stay playable with the surviving conditions.
	res := set.CheckAll(fuelSnapshot(1, 10))
	if !res.Victory {
		t.Error("surviving win condition should still aggregate")
	}
}

func TestHistoryBounded(t *testing.T) {
	set := NewSet(nil, nil)
	set.Load([]Config{{Type: KindSurvival}}, nil)

	for turn := 1; turn <= 15; turn++ {
		set.CheckAll(fuelSnapshot(turn, 10))
	}

	history := set.History()
	if len(history) != historyCap {
		t.Fatalf("history length = %d, want %d", len(history), historyCap)
	}
	// Oldest evicted first: entries run from turn 6 through 15.
	if history[0].Turn != 6 {
		t.Errorf("oldest history turn = %d, want 6", history[0].Turn)
	}
	if history[len(history)-1].Turn != 15 {
		t.Errorf("newest history turn = %d, want 15", history[len(history)-1].Turn)
	}
}

// reentrantListener calls back into CheckAll, which must panic.
type reentrantListener struct {
	set *Set
}

func (l *reentrantListener) StateChanged(Result) {
	l.set.CheckAll(sim.Snapshot{Turn: 99})
}
func (l *reentrantListener) VictoryAchieved(Result) {}
func (l *reentrantListener) DefeatTriggered(Result) {}

func TestReentrantCheckAllPanics(t *testing.T) {
	listener := &reentrantListener{}
	set := NewSet(listener, nil)
	listener.set = set
	set.Load([]Config{{Type: KindSurvival}}, nil)

	defer func() {
		if recover() == nil {
			t.Error("reentrant CheckAll should panic")
		}
	}()
	set.CheckAll(fuelSnapshot(1, 10)) // triggers StateChanged -> reentry
}

func TestSetReset(t *testing.T) {
	set := NewSet(nil, nil)
	set.Load([]Config{{Type: KindSurvival}}, []Config{{Type: KindFuelDepleted}})

	set.CheckAll(fuelSnapshot(1, 10))
	set.Reset()

	if len(set.History()) != 0 {
		t.Error("Reset() should clear history")
	}
	for _, c := range set.WinConditions() {
		if c.CheckCount() != 0 {
			t.Error("Reset() should reset win conditions")
		}
	}

	// Flags reset too: a met state right after reset is a fresh transition.
	listener := &countingListener{}
	set2 := NewSet(listener, nil)
	set2.Load([]Config{{Type: KindSurvival}}, nil)
	set2.CheckAll(fuelSnapshot(1, 10))
	set2.Reset()
	set2.CheckAll(fuelSnapshot(1, 10))
	if listener.victories != 2 {
		t.Errorf("victories across a reset = %d, want 2", listener.victories)
	}
}
