package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/showcase-dl/showcase-dl/internal/state"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.banner())
	b.WriteString("\n")

	for _, e := range m.snap.Entries {
		b.WriteString(m.renderEntry(e))
	}

	if len(m.snap.Entries) == 0 {
		b.WriteString(detailStyle.Render("no videos yet"))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) banner() string {
	stage, stageURL := m.snap.Stage, m.snap.StageURL
	switch stage {
	case state.StageFetching:
		return bannerStyle.Render("Fetching " + stageURL)
	case state.StageProcessing:
		return bannerStyle.Render("Processing")
	case state.StageDraining:
		return drainingStyle.Render("Shutting down, waiting for downloads to stop")
	case state.StageDone:
		return bannerStyle.Render("Done")
	default:
		return bannerStyle.Render("Initializing")
	}
}

func (m Model) renderEntry(e state.EntrySnapshot) string {
	var b strings.Builder

	b.WriteString(statusStyle(e.Status).Render(statusIcon(e.Status)))
	b.WriteString(" ")
	b.WriteString(titleStyle.Render(e.DisplayTitle()))
	b.WriteString("\n")

	switch e.Status {
	case state.StatusPending:
		b.WriteString("  " + pendingStyle.Render("waiting"))
	case state.StatusRunning:
		b.WriteString("  " + m.renderProgress(e))
	case state.StatusFinished:
		if e.OutputFile != "" {
			b.WriteString("  " + detailStyle.Render(e.OutputFile))
		} else {
			b.WriteString("  " + finishedStyle.Render("finished"))
		}
	case state.StatusFailed:
		b.WriteString("  " + failedStyle.Render(e.Detail))
	case state.StatusCancelled:
		b.WriteString("  " + cancelledStyle.Render("cancelled"))
	}
	b.WriteString("\n")
	return b.String()
}

// renderProgress shows the gauge when a percentage is known and falls
// back to the raw output line while the downloader is still warming up.
func (m Model) renderProgress(e state.EntrySnapshot) string {
	if !e.PercentKnown {
		if e.LastLine != "" {
			return detailStyle.Render(e.LastLine)
		}
		return runningStyle.Render("starting")
	}

	parts := []string{
		m.bar.ViewAs(e.Percent / 100),
		fmt.Sprintf("%5.1f%%", e.Percent),
	}
	if e.Size != "" {
		parts = append(parts, "of "+e.Size)
	}
	if e.Speed != "" {
		parts = append(parts, "at "+e.Speed)
	}
	if e.ETA != "" {
		parts = append(parts, "ETA "+e.ETA)
	}
	if e.FragTotal > 0 {
		parts = append(parts, fmt.Sprintf("(frag %d/%d)", e.Frag, e.FragTotal))
	}
	return strings.Join(parts, " ")
}

func statusIcon(s state.Status) string {
	switch s {
	case state.StatusPending:
		return "·"
	case state.StatusRunning:
		return "▶"
	case state.StatusFinished:
		return "✓"
	case state.StatusFailed:
		return "✗"
	case state.StatusCancelled:
		return "⊘"
	default:
		return "?"
	}
}

func statusStyle(s state.Status) lipgloss.Style {
	switch s {
	case state.StatusRunning:
		return runningStyle
	case state.StatusFinished:
		return finishedStyle
	case state.StatusFailed:
		return failedStyle
	case state.StatusCancelled:
		return cancelledStyle
	default:
		return pendingStyle
	}
}
