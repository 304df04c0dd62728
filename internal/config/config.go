// Package config provides configuration management for go-agent-swarm.
package config

import "time"

// Config holds all configuration options for the orchestrator.
type Config struct {
	// Orchestration
	Workers    int           `json:"workers"`
	RunTimeout time.Duration `json:"run_timeout"`
	TermGrace  time.Duration `json:"term_grace"`

	// Paths
	AgentsFile string `json:"agents_file"`
	OutputDir  string `json:"output_dir"`
	ReportPath string `json:"report_path"`

	// Param is the free-form value appended to every agent command line,
	// resolved to an absolute path before the run starts.
	Param string `json:"param"`

	// Observability
	MetricsAddr string `json:"metrics_addr"` // empty = disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	TUIEnabled  bool   `json:"tui"`

	// Diagnostic modes
	SkipPreflight bool `json:"skip_preflight"`
	PrintAgents   bool `json:"print_agents"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Orchestration
		Workers:    16,
		RunTimeout: 120 * time.Second,
		TermGrace:  5 * time.Second,

		// Paths
		AgentsFile: "config.json",
		OutputDir:  "output",
		ReportPath: "report.json",

		// Observability
		MetricsAddr: "",
		Verbose:     false,
		LogFormat:   "json",
	}
}
