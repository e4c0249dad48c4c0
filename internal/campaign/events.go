// Package campaign drives the level-to-level state machine: starting and
// retrying levels, reacting to victory/defeat, accumulating cross-level
// statistics and deciding campaign completion. It owns the active level's
// condition set and is ticked once per simulated turn by the caller.
package campaign

import (
	"time"

	"github.com/vovakirdan/outpost-campaign/internal/conditions"
)

// Event is the interface implemented by all campaign notifications.
// Events are published synchronously from inside Tick to the Sink the
// controller was constructed with; there is no global bus.
type Event interface {
	campaignEvent()
}

// Sink receives published events.
type Sink interface {
	Publish(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event)

// Publish implements Sink.
func (f SinkFunc) Publish(ev Event) { f(ev) }

// LevelStartedEvent fires once per StartLevel call.
type LevelStartedEvent struct {
	LevelID   string
	LevelName string
	Attempt   int // cumulative attempts across the campaign
}

func (LevelStartedEvent) campaignEvent() {}

// ConditionsCheckedEvent fires every tick while a level is active. It is
// level-triggered, not edge-triggered, and is meant for live progress UI.
type ConditionsCheckedEvent struct {
	LevelID string
	Result  conditions.Result
}

func (ConditionsCheckedEvent) campaignEvent() {}

// StateChangedEvent fires on any tick where either aggregate flag flipped.
type StateChangedEvent struct {
	LevelID string
	Result  conditions.Result
}

func (StateChangedEvent) campaignEvent() {}

// VictoryEvent fires once per false-to-true transition of the aggregate
// victory flag.
type VictoryEvent struct {
	LevelID string
	Result  conditions.Result
}

func (VictoryEvent) campaignEvent() {}

// DefeatEvent fires once per false-to-true transition of the aggregate
// defeat flag.
type DefeatEvent struct {
	LevelID string
	Result  conditions.Result
}

func (DefeatEvent) campaignEvent() {}

// LevelCompletedEvent fires when a victory ends the active level.
type LevelCompletedEvent struct {
	LevelID   string
	LevelName string
	Turn      int
	Duration  time.Duration
	Stats     Stats
}

func (LevelCompletedEvent) campaignEvent() {}

// LevelFailedEvent fires when a defeat ends the active level.
// Retry is always permitted afterwards.
type LevelFailedEvent struct {
	LevelID   string
	LevelName string
	FailTurn  int
	Stats     Stats
}

func (LevelFailedEvent) campaignEvent() {}

// CampaignCompletedEvent fires once, when the completed-level count reaches
// the number of enabled levels.
type CampaignCompletedEvent struct {
	Completed int
	Enabled   int
	Stats     Stats
}

func (CampaignCompletedEvent) campaignEvent() {}
