// Package metrics provides Prometheus metrics for go-agent-swarm.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
)

// --- Run overview ---
var (
	swarmInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agent_swarm_info",
			Help: "Information about the orchestration run (value always 1)",
		},
		[]string{"version", "manifest"},
	)

	swarmTargetAgents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_swarm_target_agents",
			Help: "Number of eligible agents scheduled for this run",
		},
	)

	swarmWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_swarm_workers",
			Help: "Configured worker pool size",
		},
	)

	swarmActiveAgents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_swarm_active_agents",
			Help: "Agents currently running",
		},
	)

	swarmElapsedSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_swarm_elapsed_seconds",
			Help: "Seconds since the run started",
		},
	)
)

// --- Outcomes ---
var (
	swarmRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_swarm_runs_total",
			Help: "Completed agent runs by outcome",
		},
		[]string{"outcome"},
	)

	swarmRunDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agent_swarm_run_duration_seconds",
			Help:    "Wall-clock duration of agent runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	swarmArtifactsCollectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_swarm_artifacts_collected_total",
			Help: "Artifacts copied into the output directory",
		},
	)

	swarmArtifactsMissingTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_swarm_artifacts_missing_total",
			Help: "Successful runs whose declared artifact was absent",
		},
	)
)

// Collector manages all Prometheus metrics for the swarm.
type Collector struct {
	startTime time.Time

	mu     sync.Mutex
	active int
	peak   int
}

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Version  string
	Manifest string
	Agents   int
	Workers  int
}

// NewCollector creates a new metrics collector.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{
		startTime: time.Now(),
	}

	registry.MustRegister(
		swarmInfo,
		swarmTargetAgents,
		swarmWorkers,
		swarmActiveAgents,
		swarmElapsedSeconds,
		swarmRunsTotal,
		swarmRunDurationSeconds,
		swarmArtifactsCollectedTotal,
		swarmArtifactsMissingTotal,
	)

	swarmInfo.WithLabelValues(cfg.Version, cfg.Manifest).Set(1)
	swarmTargetAgents.Set(float64(cfg.Agents))
	swarmWorkers.Set(float64(cfg.Workers))

	return c
}

// AgentStarted records an agent process spawn.
func (c *Collector) AgentStarted() {
	c.mu.Lock()
	c.active++
	if c.active > c.peak {
		c.peak = c.active
	}
	active := c.active
	c.mu.Unlock()

	swarmActiveAgents.Set(float64(active))
}

// AgentFinished records a completed run and its outcome.
func (c *Collector) AgentFinished(result agent.Result) {
	c.mu.Lock()
	if c.active > 0 {
		c.active--
	}
	active := c.active
	c.mu.Unlock()

	swarmActiveAgents.Set(float64(active))
	swarmRunsTotal.WithLabelValues(outcomeLabel(result)).Inc()
	swarmRunDurationSeconds.Observe(result.Duration.Seconds())

	if result.Succeeded {
		if result.ArtifactPath != "" {
			swarmArtifactsCollectedTotal.Inc()
		} else {
			swarmArtifactsMissingTotal.Inc()
		}
	}
}

// Tick refreshes the elapsed-time gauge.
func (c *Collector) Tick() {
	swarmElapsedSeconds.Set(time.Since(c.startTime).Seconds())
}

// PeakActive returns the highest concurrent agent count observed.
func (c *Collector) PeakActive() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peak
}

func outcomeLabel(result agent.Result) string {
	if result.Succeeded {
		return "succeeded"
	}
	return result.Reason.String()
}
