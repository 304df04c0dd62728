// Package tui provides a live terminal dashboard for agent runs.
//
// The TUI uses Bubble Tea for the application framework and Lipgloss for
// styling. It displays one row per agent with its lifecycle state, PID,
// duration, and collected artifact.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors based on a modern dark theme
var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan

	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red

	colorText      = lipgloss.Color("#E5E7EB") // Light gray
	colorTextMuted = lipgloss.Color("#9CA3AF") // Medium gray
	colorBorder    = lipgloss.Color("#374151") // Border gray
)

var (
	baseStyle = lipgloss.NewStyle().
			Foreground(colorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

// stateStyle returns the style for a lifecycle state.
func stateStyle(s agentState) lipgloss.Style {
	switch s {
	case stateRunning:
		return warningStyle
	case stateSucceeded:
		return successStyle
	case stateFailed:
		return errorStyle
	default:
		return mutedStyle
	}
}

// stateGlyph returns the indicator character for a lifecycle state.
func stateGlyph(s agentState) string {
	switch s {
	case stateRunning:
		return "●"
	case stateSucceeded:
		return "✓"
	case stateFailed:
		return "✗"
	default:
		return "·"
	}
}
