package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
)

func testModel() Model {
	return New(Config{
		Agents: []agent.Spec{
			{Name: "alpha", Dir: "/tmp/alpha"},
			{Name: "beta", Dir: "/tmp/beta"},
		},
		Workers: 16,
	})
}

func TestNewModelRowsPending(t *testing.T) {
	m := testModel()
	if len(m.rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(m.rows))
	}
	for _, row := range m.rows {
		if row.state != statePending {
			t.Errorf("row %s state = %v, want pending", row.name, row.state)
		}
	}
	if m.Running() != 0 || m.Done() != 0 {
		t.Errorf("fresh model: running=%d done=%d, want 0/0", m.Running(), m.Done())
	}
}

func TestAgentLifecycleMessages(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(AgentStartedMsg{Name: "alpha", PID: 1234})
	m = updated.(Model)
	if m.Running() != 1 {
		t.Errorf("Running() = %d, want 1", m.Running())
	}
	if m.rows[0].pid != 1234 {
		t.Errorf("pid = %d, want 1234", m.rows[0].pid)
	}

	updated, _ = m.Update(AgentDoneMsg{Result: agent.Result{
		AgentName:    "alpha",
		Succeeded:    true,
		ArtifactPath: "/out/alpha.json",
		Duration:     3 * time.Second,
	}})
	m = updated.(Model)
	if m.Done() != 1 {
		t.Errorf("Done() = %d, want 1", m.Done())
	}
	if m.rows[0].state != stateSucceeded {
		t.Errorf("state = %v, want succeeded", m.rows[0].state)
	}
	if m.rows[0].artifact != "/out/alpha.json" {
		t.Errorf("artifact = %q", m.rows[0].artifact)
	}
}

func TestFailedAgentShowsReason(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(AgentDoneMsg{Result: agent.Result{
		AgentName: "beta",
		Reason:    agent.ReasonTimedOut,
		Duration:  120 * time.Second,
	}})
	m = updated.(Model)

	if m.rows[1].state != stateFailed {
		t.Errorf("state = %v, want failed", m.rows[1].state)
	}
	if !strings.Contains(m.View(), "timed_out") {
		t.Error("view should show the failure reason")
	}
}

func TestUnknownAgentIgnored(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(AgentStartedMsg{Name: "nonexistent", PID: 1})
	m = updated.(Model)
	if m.Running() != 0 {
		t.Errorf("unknown agent must not change state, running = %d", m.Running())
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c", "esc"} {
		t.Run(key, func(t *testing.T) {
			m := testModel()

			var msg tea.KeyMsg
			switch key {
			case "q":
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
			case "ctrl+c":
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			case "esc":
				msg = tea.KeyMsg{Type: tea.KeyEsc}
			}

			updated, cmd := m.Update(msg)
			m = updated.(Model)
			if !m.Quitting() {
				t.Errorf("key %q did not set quitting", key)
			}
			if cmd == nil {
				t.Errorf("key %q did not return tea.Quit", key)
			}
			if m.View() != "" {
				t.Error("quitting model must render empty view")
			}
		})
	}
}

func TestWindowSize(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
}

func TestViewContainsAgents(t *testing.T) {
	m := testModel()
	out := m.View()
	for _, want := range []string{"alpha", "beta", "pending", "go-agent-swarm"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(90 * time.Second); got != "00:01:30" {
		t.Errorf("formatDuration = %q, want 00:01:30", got)
	}
}
