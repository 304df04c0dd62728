// Package main provides the go-agent-swarm CLI entry point.
//
// go-agent-swarm runs a set of configured agent programs concurrently,
// each in its own working directory, enforces per-agent timeouts, and
// collects their declared output artifacts into a unified report.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
	"github.com/randomizedcoder/go-agent-swarm/internal/collate"
	"github.com/randomizedcoder/go-agent-swarm/internal/config"
	"github.com/randomizedcoder/go-agent-swarm/internal/logging"
	"github.com/randomizedcoder/go-agent-swarm/internal/metrics"
	"github.com/randomizedcoder/go-agent-swarm/internal/orchestrator"
	"github.com/randomizedcoder/go-agent-swarm/internal/preflight"
	"github.com/randomizedcoder/go-agent-swarm/internal/process"
	"github.com/randomizedcoder/go-agent-swarm/internal/provision"
	"github.com/randomizedcoder/go-agent-swarm/internal/report"
	"github.com/randomizedcoder/go-agent-swarm/internal/stats"
	"github.com/randomizedcoder/go-agent-swarm/internal/tui"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-agent-swarm
var version = "dev"

// exitInterrupted mirrors the conventional 128+SIGINT exit status.
const exitInterrupted = 130

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("go-agent-swarm %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	// When the TUI is enabled, suppress logs to avoid interfering with
	// TUI rendering
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	}
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	manifest, err := config.LoadManifest(cfg.AgentsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Manifest error: %v\n", err)
		return 1
	}
	eligible := manifest.Eligible()

	if cfg.PrintAgents {
		printAgentCommands(cfg, eligible)
		return 0
	}

	if len(eligible) == 0 {
		fmt.Fprintf(os.Stderr, "No eligible agents in %s (each needs a name and a path)\n", cfg.AgentsFile)
		return 1
	}

	logger.Info("starting",
		"version", version,
		"agents", len(eligible),
		"workers", cfg.Workers,
		"run_timeout", cfg.RunTimeout.String(),
		"param", cfg.Param,
	)

	if !cfg.TUIEnabled {
		printBanner(cfg, len(eligible))
	}

	if !cfg.SkipPreflight {
		result := preflight.RunAll(cfg.Workers, cfg.OutputDir, clonesPending(eligible))
		if !cfg.TUIEnabled {
			preflight.PrintResults(result)
		}
		if !result.Passed {
			fmt.Fprintln(os.Stderr, "Preflight checks failed (use -skip-preflight to override)")
			return 1
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prov := provision.New(logger)
	if err := prov.PrepareAll(ctx, eligible); err != nil {
		logger.Error("provisioning_failed", "error", err)
		fmt.Fprintf(os.Stderr, "Provisioning error: %v\n", err)
		return 1
	}

	if archived, err := collate.ArchiveExisting(cfg.OutputDir, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Output archive error: %v\n", err)
		return 1
	} else if archived != "" && !cfg.TUIEnabled {
		fmt.Printf("Archived previous output to %s\n", archived)
	}

	var collector *metrics.Collector
	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector(metrics.CollectorConfig{
			Version:  version,
			Manifest: cfg.AgentsFile,
			Agents:   len(eligible),
			Workers:  cfg.Workers,
		})
		metricsServer = metrics.NewServer(cfg.MetricsAddr, logger)
		if err := metricsServer.Start(); err != nil {
			logger.Error("metrics_server_failed", "error", err)
			return 1
		}
		defer metricsServer.Shutdown(context.Background())
	}

	callbacks := orchestrator.Callbacks{}
	var program *tea.Program
	if cfg.TUIEnabled {
		model := tui.New(tui.Config{
			Agents:      eligible,
			Workers:     cfg.Workers,
			Param:       cfg.Param,
			MetricsAddr: cfg.MetricsAddr,
		})
		program = tea.NewProgram(model, tea.WithAltScreen())
		callbacks = orchestrator.Callbacks{
			OnStart: func(name string, pid int) { tui.SendStarted(program, name, pid) },
			OnDone:  func(result agent.Result) { tui.SendDone(program, result) },
		}
	}

	orch := orchestrator.NewFromConfig(cfg, eligible, collate.New(cfg.OutputDir), collector, logger, callbacks)

	var results []agent.Result
	var runErr error
	if program != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			results, runErr = orch.Run(ctx)
			tui.SendQuit(program)
		}()

		if _, err := program.Run(); err != nil {
			logger.Error("tui_failed", "error", err)
		}
		// The user quitting the TUI cancels the run.
		cancel()
		<-done
	} else {
		results, runErr = orch.Run(ctx)
	}

	snap := orch.Tracker().Snapshot()

	if errors.Is(runErr, orchestrator.ErrInterrupted) {
		fmt.Print(stats.FormatExitSummary(snap, stats.SummaryConfig{
			Eligible:    len(eligible),
			Duration:    orch.Elapsed(),
			MetricsAddr: cfg.MetricsAddr,
			Interrupted: true,
		}))
		return exitInterrupted
	}
	if runErr != nil {
		logger.Error("orchestrator_failed", "error", runErr)
		return 1
	}

	artifacts := report.Build(results)
	if err := report.Write(cfg.ReportPath, artifacts); err != nil {
		logger.Error("report_write_failed", "error", err)
		fmt.Fprintf(os.Stderr, "Report error: %v\n", err)
		return 1
	}
	logger.Info("report_written", "path", cfg.ReportPath, "artifacts", len(artifacts))

	fmt.Print(stats.FormatExitSummary(snap, stats.SummaryConfig{
		Eligible:    len(eligible),
		Duration:    orch.Elapsed(),
		ReportPath:  cfg.ReportPath,
		MetricsAddr: cfg.MetricsAddr,
	}))

	return 0
}

// clonesPending reports whether any agent still needs its repository
// cloned, which makes git a hard requirement.
func clonesPending(specs []agent.Spec) bool {
	for _, spec := range specs {
		if spec.Repo == "" {
			continue
		}
		if _, err := os.Stat(spec.Dir); err != nil {
			return true
		}
	}
	return false
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config, agents int) {
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                          go-agent-swarm                            ║")
	fmt.Println("║          Concurrent Agent Orchestration and Collection             ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Agents:      %d (up to %d concurrent)\n", agents, cfg.Workers)
	fmt.Printf("  Manifest:    %s\n", cfg.AgentsFile)
	fmt.Printf("  Param:       %s\n", cfg.Param)
	fmt.Printf("  Timeout:     %s per agent\n", cfg.RunTimeout)
	fmt.Printf("  Output:      %s (report: %s)\n", cfg.OutputDir, cfg.ReportPath)
	if cfg.MetricsAddr != "" {
		fmt.Printf("  Metrics:     http://%s/metrics\n", cfg.MetricsAddr)
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()
}

// printAgentCommands prints the shell command each eligible agent would
// run, without executing anything.
func printAgentCommands(cfg *config.Config, specs []agent.Spec) {
	builder := process.NewShellBuilder(cfg.Param)
	for _, spec := range specs {
		fmt.Printf("%-20s (cd %s)\n", spec.Name, spec.Dir)
		fmt.Printf("  %s\n", builder.CommandString(spec))
	}
}
