package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
)

// newTestCollector creates a collector with an isolated registry.
func newTestCollector(cfg CollectorConfig) (*Collector, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	c := NewCollectorWithRegistry(cfg, registry)
	return c, registry
}

func TestNewCollectorRegisters(t *testing.T) {
	_, registry := newTestCollector(CollectorConfig{
		Version:  "test",
		Manifest: "config.json",
		Agents:   4,
		Workers:  16,
	})

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}

	found := false
	for _, f := range families {
		if f.GetName() == "agent_swarm_target_agents" {
			found = true
			if got := f.GetMetric()[0].GetGauge().GetValue(); got != 4 {
				t.Errorf("target_agents = %v, want 4", got)
			}
		}
	}
	if !found {
		t.Error("agent_swarm_target_agents not registered")
	}
}

func TestActiveTracking(t *testing.T) {
	c, _ := newTestCollector(CollectorConfig{Agents: 2, Workers: 2})

	c.AgentStarted()
	c.AgentStarted()
	if got := c.PeakActive(); got != 2 {
		t.Errorf("PeakActive() = %d, want 2", got)
	}

	c.AgentFinished(agent.Result{AgentName: "alpha", Succeeded: true, Duration: time.Second})
	if got := c.PeakActive(); got != 2 {
		t.Errorf("peak must not decrease, got %d", got)
	}
}

func TestAgentFinishedNeverUnderflows(t *testing.T) {
	c, _ := newTestCollector(CollectorConfig{})

	// Finish without a matching start. The counter must not go negative.
	c.AgentFinished(agent.Result{AgentName: "alpha", Reason: agent.ReasonTimedOut})
	c.AgentFinished(agent.Result{AgentName: "beta", Reason: agent.ReasonTimedOut})

	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active != 0 {
		t.Errorf("active = %d, want 0", active)
	}
}

func TestOutcomeLabel(t *testing.T) {
	tests := []struct {
		name   string
		result agent.Result
		want   string
	}{
		{"success", agent.Result{Succeeded: true}, "succeeded"},
		{"timeout", agent.Result{Reason: agent.ReasonTimedOut}, "timed_out"},
		{"non-zero", agent.Result{Reason: agent.ReasonNonZeroExit}, "non_zero_exit"},
		{"cancelled", agent.Result{Reason: agent.ReasonCancelled}, "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeLabel(tt.result); got != tt.want {
				t.Errorf("outcomeLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
