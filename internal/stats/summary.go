// Package stats tracks run outcomes and formats the exit summary.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/influxdata/tdigest"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
)

// Tracker accumulates run outcomes as agents finish.
type Tracker struct {
	mu       sync.Mutex
	digest   *tdigest.TDigest
	outcomes map[string]int
	total    int
	failed   []string
}

// NewTracker creates an empty run tracker.
func NewTracker() *Tracker {
	return &Tracker{
		digest:   tdigest.NewWithCompression(100),
		outcomes: make(map[string]int),
	}
}

// Record adds a finished run to the tracker.
func (t *Tracker) Record(result agent.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	t.digest.Add(result.Duration.Seconds(), 1)

	if result.Succeeded {
		t.outcomes["succeeded"]++
		return
	}
	t.outcomes[result.Reason.String()]++
	t.failed = append(t.failed, result.AgentName)
}

// Snapshot returns the aggregated state for summary formatting.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	outcomes := make(map[string]int, len(t.outcomes))
	for k, v := range t.outcomes {
		outcomes[k] = v
	}
	failed := make([]string, len(t.failed))
	copy(failed, t.failed)
	sort.Strings(failed)

	snap := Snapshot{
		Total:    t.total,
		Outcomes: outcomes,
		Failed:   failed,
	}
	if t.total > 0 {
		snap.DurationP50 = secondsToDuration(t.digest.Quantile(0.50))
		snap.DurationP95 = secondsToDuration(t.digest.Quantile(0.95))
		snap.DurationP99 = secondsToDuration(t.digest.Quantile(0.99))
	}
	return snap
}

// Snapshot is an immutable view of a Tracker.
type Snapshot struct {
	Total       int
	Outcomes    map[string]int
	Failed      []string
	DurationP50 time.Duration
	DurationP95 time.Duration
	DurationP99 time.Duration
}

// Succeeded returns the count of successful runs.
func (s Snapshot) Succeeded() int {
	return s.Outcomes["succeeded"]
}

// SummaryConfig holds configuration for summary formatting.
type SummaryConfig struct {
	// Eligible is the number of agents scheduled for the run
	Eligible int

	// Duration is the total run duration
	Duration time.Duration

	// ReportPath is where the unified report was written ("" if none)
	ReportPath string

	// MetricsAddr is the Prometheus endpoint address ("" if disabled)
	MetricsAddr string

	// Interrupted is true when the run was cancelled before completion
	Interrupted bool
}

// FormatExitSummary formats aggregated run statistics for display at
// program exit.
func FormatExitSummary(snap Snapshot, cfg SummaryConfig) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")
	b.WriteString("                          go-agent-swarm Exit Summary\n")
	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n\n")

	if cfg.Interrupted {
		b.WriteString("⚠️  RUN INTERRUPTED: Remaining agents were terminated, no report was written\n\n")
	}

	fmt.Fprintf(&b, "Run Duration:           %s\n", FormatDuration(cfg.Duration))
	fmt.Fprintf(&b, "Eligible Agents:        %d\n", cfg.Eligible)
	fmt.Fprintf(&b, "Completed Runs:         %d\n\n", snap.Total)

	b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
	b.WriteString("                                   Outcomes\n")
	b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")

	fmt.Fprintf(&b, "  %-20s %8s\n", "Outcome", "Count")
	b.WriteString("  " + strings.Repeat("─", 30) + "\n")
	for _, outcome := range sortedOutcomes(snap.Outcomes) {
		fmt.Fprintf(&b, "  %-20s %8d\n", outcome, snap.Outcomes[outcome])
	}
	b.WriteString("\n")

	if len(snap.Failed) > 0 {
		fmt.Fprintf(&b, "  Failed agents: %s\n\n", strings.Join(snap.Failed, ", "))
	}

	if snap.Total > 0 {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		b.WriteString("                             Run Duration Percentiles\n")
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")
		fmt.Fprintf(&b, "  p50: %-12s p95: %-12s p99: %s\n\n",
			FormatDuration(snap.DurationP50),
			FormatDuration(snap.DurationP95),
			FormatDuration(snap.DurationP99),
		)
	}

	if cfg.ReportPath != "" {
		fmt.Fprintf(&b, "Report:  %s\n", cfg.ReportPath)
	}
	if cfg.MetricsAddr != "" {
		fmt.Fprintf(&b, "Metrics: http://%s/metrics\n", cfg.MetricsAddr)
	}

	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")

	return b.String()
}

func sortedOutcomes(outcomes map[string]int) []string {
	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// FormatDuration formats a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
