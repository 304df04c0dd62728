package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Workers != 16 {
		t.Errorf("Workers = %d, want 16", cfg.Workers)
	}
	if cfg.RunTimeout != 120*time.Second {
		t.Errorf("RunTimeout = %v, want 120s", cfg.RunTimeout)
	}
	if cfg.TermGrace != 5*time.Second {
		t.Errorf("TermGrace = %v, want 5s", cfg.TermGrace)
	}
	if cfg.AgentsFile != "config.json" {
		t.Errorf("AgentsFile = %q, want config.json", cfg.AgentsFile)
	}
	if cfg.OutputDir != "output" {
		t.Errorf("OutputDir = %q, want output", cfg.OutputDir)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want disabled by default", cfg.MetricsAddr)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Param = "/tmp/target"
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError string // substring, empty = valid
	}{
		{
			name:   "valid default",
			mutate: func(cfg *Config) {},
		},
		{
			name:      "missing param",
			mutate:    func(cfg *Config) { cfg.Param = "" },
			wantError: "param",
		},
		{
			name:      "zero workers",
			mutate:    func(cfg *Config) { cfg.Workers = 0 },
			wantError: "workers",
		},
		{
			name:      "negative timeout",
			mutate:    func(cfg *Config) { cfg.RunTimeout = -1 },
			wantError: "timeout",
		},
		{
			name:      "zero grace",
			mutate:    func(cfg *Config) { cfg.TermGrace = 0 },
			wantError: "grace",
		},
		{
			name:      "empty agents file",
			mutate:    func(cfg *Config) { cfg.AgentsFile = "" },
			wantError: "agents",
		},
		{
			name:      "empty output dir",
			mutate:    func(cfg *Config) { cfg.OutputDir = "" },
			wantError: "output-dir",
		},
		{
			name:      "bad log format",
			mutate:    func(cfg *Config) { cfg.LogFormat = "xml" },
			wantError: "log-format",
		},
		{
			name: "print-agents does not need a param",
			mutate: func(cfg *Config) {
				cfg.Param = ""
				cfg.PrintAgents = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)

			if tt.wantError == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.wantError)
			}
		})
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := `{
  "agents": [
    {"name": "alpha", "path": "agents/alpha", "script": "python3 main.py", "script-output": "out.json", "output": "alpha.json"},
    {"name": "", "path": "agents/nameless", "script": "true"},
    {"name": "dirless", "script": "true"},
    {"name": "beta", "path": "agents/beta", "script": "./run.sh", "script-output": "result.json", "output": "beta.json", "repo": "https://example.com/beta.git"}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error: %v", err)
	}

	if len(m.Agents) != 4 {
		t.Fatalf("len(Agents) = %d, want 4", len(m.Agents))
	}

	eligible := m.Eligible()
	if len(eligible) != 2 {
		t.Fatalf("len(Eligible()) = %d, want 2", len(eligible))
	}
	if eligible[0].Name != "alpha" || eligible[1].Name != "beta" {
		t.Errorf("Eligible() order = %q, %q; want alpha, beta", eligible[0].Name, eligible[1].Name)
	}
	if eligible[1].Repo != "https://example.com/beta.git" {
		t.Errorf("Repo = %q, want clone URL preserved", eligible[1].Repo)
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadManifest() on missing file = nil, want error")
	}
}

func TestLoadManifestBadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("LoadManifest() on bad JSON = nil, want error")
	}
}
