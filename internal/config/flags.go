package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// ParseFlags parses command-line flags and returns a Config.
// Returns an error if required arguments are missing or invalid.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `go-agent-swarm - concurrent agent runner with artifact collation

Usage:
  go-agent-swarm [flags] <PARAM>

PARAM is passed to every agent command line, resolved to an absolute path.

Orchestration Flags:
`)
		printFlagCategory([]string{"workers", "timeout", "grace"})

		fmt.Fprintf(os.Stderr, "\nPaths:\n")
		printFlagCategory([]string{"agents", "output-dir", "report"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory([]string{"metrics", "v", "log-format", "tui"})

		fmt.Fprintf(os.Stderr, "\nSafety & Diagnostics:\n")
		printFlagCategory([]string{"skip-preflight", "print-agents"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Run all agents from config.json against a target directory
  go-agent-swarm /path/to/target

  # Shorter timeout, live dashboard
  go-agent-swarm -timeout 30s -tui /path/to/target

  # Expose Prometheus metrics while the swarm runs
  go-agent-swarm -metrics 0.0.0.0:17092 /path/to/target
`)
	}

	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "maximum concurrent agent runs")
	flag.DurationVar(&cfg.RunTimeout, "timeout", cfg.RunTimeout, "per-agent wall-clock timeout")
	flag.DurationVar(&cfg.TermGrace, "grace", cfg.TermGrace, "SIGTERM grace period before SIGKILL")

	flag.StringVar(&cfg.AgentsFile, "agents", cfg.AgentsFile, "agents manifest file (JSON)")
	flag.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory collected artifacts are copied into")
	flag.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "report file written after a completed run")

	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics listen address (empty = disabled)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose (debug) logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: json or text")
	flag.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "live terminal dashboard")

	flag.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "skip startup preflight checks")
	flag.BoolVar(&cfg.PrintAgents, "print-agents", cfg.PrintAgents, "print the parsed agents manifest and exit")

	flag.Parse()

	// Positional argument: the shared parameter
	if flag.NArg() > 0 {
		abs, err := filepath.Abs(flag.Arg(0))
		if err != nil {
			return nil, fmt.Errorf("resolving param: %w", err)
		}
		cfg.Param = abs
	}

	return cfg, nil
}

// printFlagCategory prints the named flags in defined order.
func printFlagCategory(names []string) {
	for _, name := range names {
		f := flag.Lookup(name)
		if f == nil {
			continue
		}
		fmt.Fprintf(os.Stderr, "  -%-16s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
	}
}
