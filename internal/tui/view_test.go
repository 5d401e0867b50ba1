package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/showcase-dl/showcase-dl/internal/state"
)

func testModel(snap state.Snapshot) Model {
	m := New(state.NewStore(), func() {}, 50*time.Millisecond)
	m.snap = snap
	m.bar.Width = 20
	return m
}

func TestViewBanner(t *testing.T) {
	tests := []struct {
		name     string
		stage    state.Stage
		stageURL string
		expected string
	}{
		{"initializing", state.StageInitializing, "", "Initializing"},
		{"fetching shows url", state.StageFetching, "https://vimeo.com/showcase/1", "Fetching https://vimeo.com/showcase/1"},
		{"processing", state.StageProcessing, "", "Processing"},
		{"draining", state.StageDraining, "", "Shutting down"},
		{"done", state.StageDone, "", "Done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(state.Snapshot{Stage: tt.stage, StageURL: tt.stageURL})
			if view := m.View(); !strings.Contains(view, tt.expected) {
				t.Errorf("View() missing %q:\n%s", tt.expected, view)
			}
		})
	}
}

func TestViewEntries(t *testing.T) {
	snap := state.Snapshot{
		Stage: state.StageProcessing,
		Entries: []state.EntrySnapshot{
			{Title: "Act One", Status: state.StatusRunning, Percent: 42.5, PercentKnown: true, Size: "100.00MiB", Speed: "5.00MiB/s"},
			{Title: "Act Two", Status: state.StatusFinished, OutputFile: "Act Two.mp4"},
			{Title: "Act Three", Status: state.StatusFailed, Detail: "exit status 1: ERROR: boom"},
			{URL: "https://vimeo.com/111", Status: state.StatusPending},
		},
	}

	view := testModel(snap).View()

	for _, want := range []string{
		"Act One", "42.5%", "of 100.00MiB", "at 5.00MiB/s",
		"Act Two.mp4",
		"ERROR: boom",
		"https://vimeo.com/111", "waiting",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestViewRunningWithoutPercentShowsLastLine(t *testing.T) {
	snap := state.Snapshot{
		Entries: []state.EntrySnapshot{
			{Title: "Act One", Status: state.StatusRunning, LastLine: "[youtube] 111: Downloading webpage"},
		},
	}
	view := testModel(snap).View()
	if !strings.Contains(view, "Downloading webpage") {
		t.Errorf("View() missing raw line:\n%s", view)
	}
}

func TestQuitKeyStartsSingleDrain(t *testing.T) {
	calls := 0
	m := New(state.NewStore(), func() { calls++ }, 50*time.Millisecond)

	key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}

	next, cmd := m.Update(key)
	m = next.(Model)
	if !m.draining {
		t.Fatal("first quit key did not start draining")
	}
	if cmd == nil {
		t.Fatal("first quit key returned no command")
	}

	// Second press while draining is ignored.
	next, cmd = m.Update(key)
	m = next.(Model)
	if cmd != nil {
		t.Error("second quit key returned a command")
	}

	// The shutdown itself runs inside the returned command, not Update.
	if calls != 0 {
		t.Errorf("shutdown ran during Update, calls = %d", calls)
	}
}

func TestDrainedMsgQuits(t *testing.T) {
	m := New(state.NewStore(), func() {}, 50*time.Millisecond)
	_, cmd := m.Update(drainedMsg{})
	if cmd == nil {
		t.Fatal("drainedMsg returned no command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("drainedMsg command = %v, want quit", msg)
	}
}
