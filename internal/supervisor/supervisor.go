package supervisor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
	"github.com/randomizedcoder/go-agent-swarm/internal/logging"
	"github.com/randomizedcoder/go-agent-swarm/internal/process"
)

// Collector locates and copies an agent's declared output after a
// successful run. Implemented by the collate package; substituted in
// tests.
type Collector interface {
	// Collect returns the destination path of the copied artifact, or
	// empty when the agent never wrote its declared output. A missing
	// artifact is a warning, not a run failure.
	Collect(spec agent.Spec) (string, error)
}

// Callbacks contains optional callback functions for supervisor events.
type Callbacks struct {
	// OnStart is called when the agent process starts.
	OnStart func(name string, pid int)

	// OnDone is called exactly once with the final result.
	OnDone func(result agent.Result)
}

// Config holds configuration for creating a new Supervisor.
type Config struct {
	Spec      agent.Spec
	Builder   process.Builder
	Registry  *Registry
	Collector Collector
	Logger    *slog.Logger
	Callbacks Callbacks

	// Timeout is the wall-clock limit for the run.
	Timeout time.Duration

	// Grace is how long a terminated process gets to exit after SIGTERM
	// before SIGKILL.
	Grace time.Duration
}

// Supervisor owns the lifecycle of exactly one spawned agent process:
// start, wait, timeout-enforce, cancel, reap, capture output. A Supervisor
// is used for a single run and then discarded; agents are never restarted.
type Supervisor struct {
	spec      agent.Spec
	builder   process.Builder
	registry  *Registry
	collector Collector
	logger    *slog.Logger
	callbacks Callbacks
	timeout   time.Duration
	grace     time.Duration
}

// New creates a new Supervisor with the given configuration.
func New(cfg Config) *Supervisor {
	return &Supervisor{
		spec:      cfg.Spec,
		builder:   cfg.Builder,
		registry:  cfg.Registry,
		collector: cfg.Collector,
		logger:    cfg.Logger,
		callbacks: cfg.Callbacks,
		timeout:   cfg.Timeout,
		grace:     cfg.Grace,
	}
}

// Run executes the agent once and blocks until the process has terminated
// and been reaped, the run timed out, or ctx was cancelled. Under every
// exit path the process handle is removed from the registry exactly once
// and no process is left running past return (forceful kill is attempted
// but not guaranteed against an uncooperative process).
func (s *Supervisor) Run(ctx context.Context) agent.Result {
	result := s.run(ctx)

	if s.callbacks.OnDone != nil {
		s.callbacks.OnDone(result)
	}
	return result
}

func (s *Supervisor) run(ctx context.Context) agent.Result {
	// Fail fast before spawning anything.
	if info, err := os.Stat(s.spec.Dir); err != nil || !info.IsDir() {
		s.logger.Error("agent_directory_missing",
			"agent", s.spec.Name,
			"dir", s.spec.Dir,
		)
		return agent.Result{
			AgentName: s.spec.Name,
			Reason:    agent.ReasonDirectoryNotFound,
		}
	}

	cmd, err := s.builder.BuildCommand(ctx, s.spec)
	if err != nil {
		s.logger.Error("agent_command_build_failed",
			"agent", s.spec.Name,
			"error", err,
		)
		return agent.Result{
			AgentName: s.spec.Name,
			Reason:    agent.ReasonSpawnError,
		}
	}

	// Streams are buffered in full until completion, not streamed.
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Own process group so termination reaches shell children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		s.logger.Error("agent_spawn_failed",
			"agent", s.spec.Name,
			"error", err,
		)
		return agent.Result{
			AgentName: s.spec.Name,
			Reason:    agent.ReasonSpawnError,
			Duration:  time.Since(start),
		}
	}

	// Register before anything else so the global canceller can always
	// reach this process. Deregistration must happen exactly once on
	// every path, including panics during collation.
	s.registry.add(cmd)
	defer s.registry.remove(cmd)

	pid := cmd.Process.Pid
	s.logger.Info("agent_started",
		"agent", s.spec.Name,
		"pid", pid,
		"dir", s.spec.Dir,
	)
	if s.callbacks.OnStart != nil {
		s.callbacks.OnStart(s.spec.Name, pid)
	}

	// Event-driven wait: process exit, cancellation, and timeout race.
	// Whichever fires first wins; cancellation and timeout are mutually
	// exclusive outcomes for a run.
	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	var waitErr error
	select {
	case waitErr = <-waitCh:
		// Exited on its own; fall through to reap handling.

	case <-ctx.Done():
		s.terminate(cmd, waitCh)
		s.logger.Warn("agent_cancelled",
			"agent", s.spec.Name,
			"pid", pid,
			"uptime", time.Since(start).String(),
		)
		return agent.Result{
			AgentName: s.spec.Name,
			Reason:    agent.ReasonCancelled,
			Duration:  time.Since(start),
		}

	case <-timer.C:
		s.terminate(cmd, waitCh)
		s.logger.Warn("agent_timed_out",
			"agent", s.spec.Name,
			"pid", pid,
			"timeout", s.timeout.String(),
		)
		return agent.Result{
			AgentName: s.spec.Name,
			Reason:    agent.ReasonTimedOut,
			Duration:  time.Since(start),
		}
	}

	duration := time.Since(start)
	exitCode := extractExitCode(waitErr)

	if exitCode != 0 {
		s.logger.Error("agent_failed",
			"agent", s.spec.Name,
			"pid", pid,
			"exit_code", exitCode,
			"duration", duration.String(),
			"stdout", logging.Excerpt(stdout.String(), logging.DefaultExcerptLines),
			"stderr", logging.Excerpt(stderr.String(), logging.DefaultExcerptLines),
		)
		return agent.Result{
			AgentName: s.spec.Name,
			Reason:    agent.ReasonNonZeroExit,
			ExitCode:  exitCode,
			Stdout:    stdout.String(),
			Stderr:    stderr.String(),
			Duration:  duration,
		}
	}

	s.logger.Info("agent_completed",
		"agent", s.spec.Name,
		"pid", pid,
		"duration", duration.String(),
	)

	result := agent.Result{
		AgentName: s.spec.Name,
		Succeeded: true,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  duration,
	}

	if s.collector != nil {
		artifact, err := s.collector.Collect(s.spec)
		switch {
		case err != nil:
			// Collation trouble does not fail a completed run.
			s.logger.Warn("artifact_collation_failed",
				"agent", s.spec.Name,
				"error", err,
			)
		case artifact == "":
			s.logger.Warn("artifact_missing",
				"agent", s.spec.Name,
				"expected", s.spec.Output,
			)
		default:
			result.ArtifactPath = artifact
			s.logger.Info("artifact_collected",
				"agent", s.spec.Name,
				"artifact", artifact,
			)
		}
	}

	return result
}

// terminate stops the running process with the SIGTERM/grace/SIGKILL
// escalation and reaps it. The final wait is bounded too: an unkillable
// process is logged and abandoned, never waited on forever.
func (s *Supervisor) terminate(cmd *exec.Cmd, waitCh <-chan error) {
	signalGroup(cmd, syscall.SIGTERM)

	select {
	case <-waitCh:
		return
	case <-time.After(s.grace):
	}

	s.logger.Warn("force_killing_agent",
		"agent", s.spec.Name,
		"pid", cmd.Process.Pid,
	)
	signalGroup(cmd, syscall.SIGKILL)

	select {
	case <-waitCh:
	case <-time.After(s.grace):
		s.logger.Warn("agent_unkillable",
			"agent", s.spec.Name,
			"pid", cmd.Process.Pid,
		)
	}
}

// extractExitCode extracts the exit code from a Wait() error.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				// Signal exit: 128 + signal number
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}

	// Unknown error, assume exit code 1
	return 1
}
