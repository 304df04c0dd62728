// Package orchestrator coordinates the concurrent execution of agents.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
	"github.com/randomizedcoder/go-agent-swarm/internal/config"
	"github.com/randomizedcoder/go-agent-swarm/internal/metrics"
	"github.com/randomizedcoder/go-agent-swarm/internal/process"
	"github.com/randomizedcoder/go-agent-swarm/internal/stats"
	"github.com/randomizedcoder/go-agent-swarm/internal/supervisor"
)

// ErrInterrupted is returned by Run when the swarm was cancelled by a
// signal before all agents completed.
var ErrInterrupted = errors.New("run interrupted")

// Callbacks allows observers (TUI, logging) to follow agent lifecycle
// events. All fields are optional.
type Callbacks struct {
	OnStart func(name string, pid int)
	OnDone  func(result agent.Result)
}

// Config holds the orchestrator's dependencies. Builder and Collector
// are injectable for testing; when nil, Run fails fast.
type Config struct {
	Specs     []agent.Spec
	Builder   process.Builder
	Collector supervisor.Collector
	Metrics   *metrics.Collector
	Logger    *slog.Logger
	Callbacks Callbacks

	Workers    int
	RunTimeout time.Duration
	TermGrace  time.Duration
}

// Orchestrator runs a set of agents through a bounded worker pool and
// owns the shared process registry used for global termination.
type Orchestrator struct {
	cfg      Config
	logger   *slog.Logger
	registry *supervisor.Registry
	tracker  *stats.Tracker

	startTime   time.Time
	interrupted atomic.Bool
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		logger:   cfg.Logger,
		registry: supervisor.NewRegistry(),
		tracker:  stats.NewTracker(),
	}
}

// NewFromConfig wires an Orchestrator from the top-level configuration,
// using the shell builder and the given artifact collator.
func NewFromConfig(cfg *config.Config, specs []agent.Spec, collector supervisor.Collector, m *metrics.Collector, logger *slog.Logger, callbacks Callbacks) *Orchestrator {
	return New(Config{
		Specs:      specs,
		Builder:    &process.ShellBuilder{Param: cfg.Param},
		Collector:  collector,
		Metrics:    m,
		Logger:     logger,
		Callbacks:  callbacks,
		Workers:    cfg.Workers,
		RunTimeout: cfg.RunTimeout,
		TermGrace:  cfg.TermGrace,
	})
}

// Run executes all agents and blocks until every run has completed or
// the swarm is interrupted. Results are returned in manifest order.
// A partial result slice accompanies ErrInterrupted.
func (o *Orchestrator) Run(ctx context.Context) ([]agent.Result, error) {
	o.startTime = time.Now()

	if len(o.cfg.Specs) == 0 {
		return nil, errors.New("no eligible agents to run")
	}
	if o.cfg.Builder == nil {
		return nil, errors.New("orchestrator: no process builder configured")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			o.logger.Info("received_signal", "signal", sig.String())
			o.interrupted.Store(true)
			cancel()
		case <-ctx.Done():
		}
	}()

	o.logger.Info("swarm_starting",
		"agents", len(o.cfg.Specs),
		"workers", o.cfg.Workers,
		"run_timeout", o.cfg.RunTimeout.String(),
	)

	results := make([]agent.Result, len(o.cfg.Specs))

	g := &errgroup.Group{}
	g.SetLimit(o.cfg.Workers)

	for i, spec := range o.cfg.Specs {
		i, spec := i, spec
		g.Go(func() error {
			sup := supervisor.New(supervisor.Config{
				Spec:      spec,
				Builder:   o.cfg.Builder,
				Registry:  o.registry,
				Collector: o.cfg.Collector,
				Logger:    o.logger,
				Timeout:   o.cfg.RunTimeout,
				Grace:     o.cfg.TermGrace,
				Callbacks: supervisor.Callbacks{
					OnStart: o.onStart,
					OnDone:  o.onDone,
				},
			})
			results[i] = sup.Run(ctx)
			return nil
		})
	}

	g.Wait()

	if o.interrupted.Load() || ctx.Err() != nil {
		// Supervisors have already escalated on their own processes.
		// The registry sweep catches anything still live.
		o.registry.TerminateAll(o.cfg.TermGrace)
		o.logger.Info("swarm_interrupted", "completed", o.tracker.Snapshot().Total)
		return results, ErrInterrupted
	}

	o.logger.Info("swarm_complete",
		"agents", len(results),
		"succeeded", o.tracker.Snapshot().Succeeded(),
		"duration", time.Since(o.startTime).String(),
	)

	return results, nil
}

func (o *Orchestrator) onStart(name string, pid int) {
	if o.cfg.Metrics != nil {
		o.cfg.Metrics.AgentStarted()
	}
	if o.cfg.Callbacks.OnStart != nil {
		o.cfg.Callbacks.OnStart(name, pid)
	}
}

func (o *Orchestrator) onDone(result agent.Result) {
	o.tracker.Record(result)
	if o.cfg.Metrics != nil {
		o.cfg.Metrics.AgentFinished(result)
		o.cfg.Metrics.Tick()
	}
	if o.cfg.Callbacks.OnDone != nil {
		o.cfg.Callbacks.OnDone(result)
	}
}

// Tracker exposes the outcome tracker for exit-summary formatting.
func (o *Orchestrator) Tracker() *stats.Tracker {
	return o.tracker
}

// Registry exposes the live process registry.
func (o *Orchestrator) Registry() *supervisor.Registry {
	return o.registry
}

// Elapsed returns the wall-clock time since Run started.
func (o *Orchestrator) Elapsed() time.Duration {
	return time.Since(o.startTime)
}
