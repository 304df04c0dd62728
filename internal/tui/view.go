package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// render draws the full dashboard.
func (m Model) render() string {
	sections := []string{
		m.renderHeader(),
		m.renderAgentTable(),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("go-agent-swarm")
	elapsed := mutedStyle.Render(fmt.Sprintf("elapsed %s", formatDuration(m.Elapsed())))
	counts := subtitleStyle.Render(fmt.Sprintf("%d/%d done, %d running, %d workers",
		m.Done(), len(m.rows), m.Running(), m.workers))

	return lipgloss.JoinHorizontal(lipgloss.Center,
		title, "  ", counts, "  ", elapsed)
}

func (m Model) renderAgentTable() string {
	var b strings.Builder

	header := fmt.Sprintf("  %-20s %-12s %8s %10s  %s",
		"Agent", "State", "PID", "Duration", "Artifact")
	b.WriteString(mutedStyle.Render(header))
	b.WriteString("\n")

	for _, row := range m.rows {
		style := stateStyle(row.state)

		pid := "-"
		if row.pid > 0 {
			pid = fmt.Sprintf("%d", row.pid)
		}
		duration := "-"
		if row.duration > 0 {
			duration = row.duration.Truncate(time.Millisecond).String()
		}
		detail := row.artifact
		if row.state == stateFailed {
			detail = row.reason.String()
		}

		line := fmt.Sprintf("%s %-20s %-12s %8s %10s  %s",
			stateGlyph(row.state),
			truncate(row.name, 20),
			stateName(row.state),
			pid,
			duration,
			truncate(detail, 40),
		)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return panelStyle.Width(m.width - 2).Render(b.String())
}

func (m Model) renderFooter() string {
	parts := []string{"q: quit and terminate agents"}
	if m.metricsAddr != "" {
		parts = append(parts, fmt.Sprintf("metrics: http://%s/metrics", m.metricsAddr))
	}
	return mutedStyle.Render("  " + strings.Join(parts, "  |  "))
}

func stateName(s agentState) string {
	switch s {
	case stateRunning:
		return "running"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	default:
		return "pending"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
