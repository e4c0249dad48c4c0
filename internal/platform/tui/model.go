package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/outpost-campaign/internal/campaign"
	"github.com/vovakirdan/outpost-campaign/internal/conditions"
	"github.com/vovakirdan/outpost-campaign/internal/sim"
)

// Number of recent event lines kept in the sidebar log.
const eventLogLines = 6

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	metStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	unmetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	dangerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	resultStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

// KeyMap defines the watcher key bindings.
type KeyMap struct {
	Restart key.Binding
	Advance key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Restart, k.Advance, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Restart, k.Advance, k.Quit}}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart level"),
		),
		Advance: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next level"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// EventBuffer collects campaign events published during a tick so the
// model can render them afterwards.
type EventBuffer struct {
	lines []string
}

// Publish implements campaign.Sink.
func (b *EventBuffer) Publish(ev campaign.Event) {
	var line string
	switch e := ev.(type) {
	case campaign.LevelStartedEvent:
		line = fmt.Sprintf("level started: %s (attempt %d)", e.LevelName, e.Attempt)
	case campaign.StateChangedEvent:
		line = fmt.Sprintf("state changed on turn %d", e.Result.Turn)
	case campaign.VictoryEvent:
		line = fmt.Sprintf("victory on turn %d", e.Result.Turn)
	case campaign.DefeatEvent:
		line = fmt.Sprintf("defeat on turn %d", e.Result.Turn)
	case campaign.LevelCompletedEvent:
		line = fmt.Sprintf("%s completed in %d turns", e.LevelName, e.Turn)
	case campaign.LevelFailedEvent:
		line = fmt.Sprintf("%s failed on turn %d", e.LevelName, e.FailTurn)
	case campaign.CampaignCompletedEvent:
		line = fmt.Sprintf("campaign completed (%d/%d levels)", e.Completed, e.Enabled)
	default:
		return // per-tick events stay out of the log
	}
	b.lines = append(b.lines, line)
	if len(b.lines) > eventLogLines {
		b.lines = b.lines[1:]
	}
}

// Model is the Bubble Tea model for watching a campaign run.
type Model struct {
	controller *campaign.Controller
	colony     *sim.Colony
	events     *EventBuffer
	bar        progress.Model
	keys       KeyMap
	help       help.Model
	turnRate   int
	width      int
	height     int
	advanceAt  time.Time
	done       bool
	quitting   bool
}

// NewModel creates a campaign watcher. The controller should have been
// constructed with the same EventBuffer as its sink.
func NewModel(controller *campaign.Controller, colony *sim.Colony, events *EventBuffer, turnRate int) Model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	return Model{
		controller: controller,
		colony:     colony,
		events:     events,
		bar:        bar,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		turnRate:   turnRate,
	}
}

// NewEventBuffer returns the sink to construct the controller with.
func NewEventBuffer() *EventBuffer {
	return &EventBuffer{}
}

// Init starts the turn loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.turnRate)
}

// Update handles messages and advances the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Restart):
			m.colony.Reset()
			m.controller.RestartCurrentLevel()
			m.advanceAt = time.Time{}
			if m.done {
				// The turn loop stopped with the campaign; start it again.
				m.done = false
				return m, tickCmd(m.turnRate)
			}
			return m, nil
		case key.Matches(msg, m.keys.Advance):
			if m.controller.State() == campaign.StateVictory {
				m.advance()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	switch m.controller.State() {
	case campaign.StateLevelActive:
		m.colony.Step()
		m.controller.Tick(m.colony.Snapshot())
		if m.controller.State() == campaign.StateVictory {
			m.advanceAt = time.Now().Add(campaign.AdvanceDelay)
		}

	case campaign.StateVictory:
		if !m.advanceAt.IsZero() && time.Now().After(m.advanceAt) {
			m.advance()
		}

	case campaign.StateIdle:
		if m.controller.CampaignComplete() {
			m.done = true
		}
	}

	if m.done {
		return m, nil
	}
	return m, tickCmd(m.turnRate)
}

func (m *Model) advance() {
	m.advanceAt = time.Time{}
	m.colony.Reset()
	if !m.controller.AdvanceToNextLevel() {
		m.done = true
	}
}

// View renders the watcher.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	status := m.controller.Status()
	snap := m.colony.Snapshot()

	var b strings.Builder

	title := status.LevelName
	if title == "" {
		title = "Outpost Campaign"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  turn %d  campaign %.0f%%", status.Turn, status.CampaignPercent)))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(fmt.Sprintf("fuel %.1f  materials %.1f  waste %.1f  buildings %d",
		snap.Resource(sim.ResourceFuel),
		snap.Resource(sim.ResourceMaterials),
		snap.Resource(sim.ResourceWaste),
		snap.TotalBuildings())))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("win conditions"))
	b.WriteString("\n")
	for _, st := range status.Win {
		b.WriteString(m.renderCondition(st, false))
	}
	if len(status.Win) > 0 {
		b.WriteString(fmt.Sprintf("  %s %s\n", m.bar.ViewAs(status.WinProgress), labelStyle.Render("overall")))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("lose conditions"))
	b.WriteString("\n")
	for _, st := range status.Lose {
		b.WriteString(m.renderCondition(st, true))
	}
	b.WriteString("\n")

	switch m.controller.State() {
	case campaign.StateVictory:
		b.WriteString(resultStyle.Foreground(lipgloss.Color("42")).Render("LEVEL COMPLETE"))
		b.WriteString("\n")
	case campaign.StateDefeat:
		b.WriteString(resultStyle.Foreground(lipgloss.Color("203")).Render("LEVEL FAILED, press r to retry"))
		b.WriteString("\n")
	}
	if m.done {
		b.WriteString(resultStyle.Foreground(lipgloss.Color("212")).Render("CAMPAIGN COMPLETE"))
		b.WriteString("\n")
	}

	if len(m.events.lines) > 0 {
		b.WriteString("\n")
		for _, line := range m.events.lines {
			b.WriteString(eventStyle.Render("  · " + line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderCondition(st conditions.CheckStatus, lose bool) string {
	mark := "[ ]"
	style := unmetStyle
	if st.Met {
		mark = "[x]"
		style = metStyle
		if lose {
			style = dangerStyle
		}
	} else if lose && st.Progress > 0.7 {
		style = dangerStyle
	}
	return fmt.Sprintf("  %s %s %s\n", style.Render(mark), m.bar.ViewAs(st.Progress), style.Render(st.Label))
}

// Run starts the watcher program over the local terminal.
func Run(controller *campaign.Controller, colony *sim.Colony, events *EventBuffer, turnRate int) error {
	m := NewModel(controller, colony, events, turnRate)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: running watcher: %w", err)
	}
	return nil
}
