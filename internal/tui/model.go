package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
)

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to refresh the elapsed clock.
type TickMsg time.Time

// AgentStartedMsg marks an agent's process as spawned.
type AgentStartedMsg struct {
	Name string
	PID  int
}

// AgentDoneMsg carries a finished run.
type AgentDoneMsg struct {
	Result agent.Result
}

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// =============================================================================
// Model
// =============================================================================

// agentState is the dashboard lifecycle of one agent.
type agentState int

const (
	statePending agentState = iota
	stateRunning
	stateSucceeded
	stateFailed
)

type agentRow struct {
	name     string
	state    agentState
	pid      int
	reason   agent.FailureReason
	artifact string
	duration time.Duration
}

// Model represents the TUI state.
type Model struct {
	// Configuration
	workers     int
	param       string
	metricsAddr string

	// Ordered per-agent rows, indexed by name
	rows  []agentRow
	index map[string]int

	startTime time.Time

	width  int
	height int

	quitting bool
}

// Config holds TUI configuration.
type Config struct {
	Agents      []agent.Spec
	Workers     int
	Param       string
	MetricsAddr string
}

// New creates a new TUI model with one pending row per agent.
func New(cfg Config) Model {
	rows := make([]agentRow, len(cfg.Agents))
	index := make(map[string]int, len(cfg.Agents))
	for i, spec := range cfg.Agents {
		rows[i] = agentRow{name: spec.Name, state: statePending}
		index[spec.Name] = i
	}

	return Model{
		workers:     cfg.Workers,
		param:       cfg.Param,
		metricsAddr: cfg.MetricsAddr,
		rows:        rows,
		index:       index,
		startTime:   time.Now(),
		width:       80,
		height:      24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		return m, tickCmd()

	case AgentStartedMsg:
		if i, ok := m.index[msg.Name]; ok {
			m.rows[i].state = stateRunning
			m.rows[i].pid = msg.PID
		}
		return m, nil

	case AgentDoneMsg:
		if i, ok := m.index[msg.Result.AgentName]; ok {
			row := &m.rows[i]
			row.duration = msg.Result.Duration
			if msg.Result.Succeeded {
				row.state = stateSucceeded
				row.artifact = msg.Result.ArtifactPath
			} else {
				row.state = stateFailed
				row.reason = msg.Result.Reason
			}
		}
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the run started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// Running returns the count of agents currently executing.
func (m Model) Running() int {
	n := 0
	for _, row := range m.rows {
		if row.state == stateRunning {
			n++
		}
	}
	return n
}

// Done returns the count of agents that have finished.
func (m Model) Done() int {
	n := 0
	for _, row := range m.rows {
		if row.state == stateSucceeded || row.state == stateFailed {
			n++
		}
	}
	return n
}

// Quitting reports whether the user asked to exit.
func (m Model) Quitting() bool {
	return m.quitting
}

// =============================================================================
// Helper for external use
// =============================================================================

// SendStarted notifies the TUI of a spawned agent.
func SendStarted(p *tea.Program, name string, pid int) {
	if p != nil {
		p.Send(AgentStartedMsg{Name: name, PID: pid})
	}
}

// SendDone notifies the TUI of a finished run.
func SendDone(p *tea.Program, result agent.Result) {
	if p != nil {
		p.Send(AgentDoneMsg{Result: result})
	}
}

// SendQuit sends a quit message to the TUI.
func SendQuit(p *tea.Program) {
	if p != nil {
		p.Send(QuitMsg{})
	}
}
