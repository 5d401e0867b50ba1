// Package tui renders the shared run state as a live terminal view.
// The view is a pure reader: it takes periodic snapshots of the store
// and never mutates download state itself.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/showcase-dl/showcase-dl/internal/state"
)

type tickMsg time.Time

// drainedMsg arrives once the shutdown coordinator has reaped every
// child; only then may the program exit.
type drainedMsg struct{}

type Model struct {
	store    *state.Store
	shutdown func()
	tick     time.Duration

	bar      progress.Model
	snap     state.Snapshot
	width    int
	draining bool
}

func New(store *state.Store, shutdown func(), tick time.Duration) Model {
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	return Model{
		store:    store,
		shutdown: shutdown,
		tick:     tick,
		bar:      progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// shutdownCmd runs the blocking drain off the update loop so the view
// keeps refreshing while children are interrupted and reaped.
func (m Model) shutdownCmd() tea.Cmd {
	return func() tea.Msg {
		m.shutdown()
		return drainedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 24
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
		if m.bar.Width < 10 {
			m.bar.Width = 10
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.draining {
				// Drain already running; a second press changes nothing.
				return m, nil
			}
			m.draining = true
			return m, tea.Batch(m.tickCmd(), m.shutdownCmd())
		}
		return m, nil

	case tickMsg:
		m.snap = m.store.Snapshot()
		return m, m.tickCmd()

	case drainedMsg:
		m.snap = m.store.Snapshot()
		return m, tea.Quit
	}

	return m, nil
}
