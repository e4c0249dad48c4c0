// Package tui provides the Bubble Tea campaign watcher: it drives the demo
// colony through the campaign controller turn by turn and renders live
// condition progress. It also hosts the Wish SSH server for remote play.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger one simulated turn.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the
// given turns-per-second rate.
func tickCmd(turnRate int) tea.Cmd {
	if turnRate <= 0 {
		turnRate = 2
	}
	interval := time.Second / time.Duration(turnRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
