// Package provision prepares agent working directories before a run:
// cloning declared repositories and installing their dependencies.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
)

// ErrGitUnavailable is returned when a clone is required but no git
// binary can be found. This is fatal to the whole invocation.
var ErrGitUnavailable = errors.New("git is not installed or not in PATH")

// Provisioner clones agent repositories and installs dependencies.
type Provisioner struct {
	logger *slog.Logger

	// GitPath allows overriding the git binary in tests.
	GitPath string
}

// New creates a Provisioner.
func New(logger *slog.Logger) *Provisioner {
	return &Provisioner{
		logger:  logger,
		GitPath: "git",
	}
}

// PrepareAll provisions every spec that declares a repository and has no
// working directory yet, in manifest order. Clone failure (or a missing
// git binary) is fatal; dependency install failure is logged and the
// agent is still attempted.
func (p *Provisioner) PrepareAll(ctx context.Context, specs []agent.Spec) error {
	for _, spec := range specs {
		if err := p.Prepare(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

// Prepare clones the spec's repository when needed. A spec without a repo
// URL, or whose directory already exists, is left untouched.
func (p *Provisioner) Prepare(ctx context.Context, spec agent.Spec) error {
	if spec.Repo == "" || spec.Dir == "" {
		return nil
	}
	if info, err := os.Stat(spec.Dir); err == nil && info.IsDir() {
		return nil
	}

	if err := p.checkGit(ctx); err != nil {
		return err
	}

	p.logger.Info("cloning_agent_repo",
		"agent", spec.Name,
		"repo", spec.Repo,
		"dir", spec.Dir,
	)

	if parent := filepath.Dir(spec.Dir); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("creating parent dir for %s: %w", spec.Name, err)
		}
	}

	clone := exec.CommandContext(ctx, p.GitPath, "clone", spec.Repo, spec.Dir)
	if out, err := clone.CombinedOutput(); err != nil {
		return fmt.Errorf("cloning %s: %w\n%s", spec.Repo, err, out)
	}

	// Best effort from here on.
	p.installDependencies(ctx, spec)
	return nil
}

// checkGit verifies the git binary runs at all.
func (p *Provisioner) checkGit(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, p.GitPath, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrGitUnavailable, err)
	}
	return nil
}

// installDependencies installs a freshly cloned agent's dependencies.
// Tries uv first when a uv.lock is present, then requirements.txt, then
// pyproject.toml (editable install with a plain install fallback).
// Failure never blocks the run; the agent is attempted regardless.
func (p *Provisioner) installDependencies(ctx context.Context, spec agent.Spec) {
	if exists(filepath.Join(spec.Dir, "uv.lock")) {
		if exec.CommandContext(ctx, "uv", "--version").Run() == nil {
			p.logger.Info("installing_dependencies", "agent", spec.Name, "tool", "uv")
			cmd := exec.CommandContext(ctx, "uv", "sync")
			cmd.Dir = spec.Dir
			if out, err := cmd.CombinedOutput(); err == nil {
				return
			} else {
				p.logger.Warn("dependency_install_failed",
					"agent", spec.Name,
					"tool", "uv",
					"error", err,
					"output", string(out),
				)
			}
		} else {
			p.logger.Info("uv_not_available_falling_back", "agent", spec.Name)
		}
	}

	if exists(filepath.Join(spec.Dir, "requirements.txt")) {
		p.logger.Info("installing_dependencies", "agent", spec.Name, "tool", "pip")
		cmd := exec.CommandContext(ctx, "python3", "-m", "pip", "install", "-r", "requirements.txt")
		cmd.Dir = spec.Dir
		if out, err := cmd.CombinedOutput(); err != nil {
			p.logger.Warn("dependency_install_failed",
				"agent", spec.Name,
				"tool", "pip",
				"error", err,
				"output", string(out),
			)
		}
		return
	}

	if exists(filepath.Join(spec.Dir, "pyproject.toml")) {
		p.logger.Info("installing_dependencies", "agent", spec.Name, "tool", "pip/pyproject")
		editable := exec.CommandContext(ctx, "python3", "-m", "pip", "install", "-e", ".")
		editable.Dir = spec.Dir
		if editable.Run() == nil {
			return
		}
		plain := exec.CommandContext(ctx, "python3", "-m", "pip", "install", ".")
		plain.Dir = spec.Dir
		if out, err := plain.CombinedOutput(); err != nil {
			p.logger.Warn("dependency_install_failed",
				"agent", spec.Name,
				"tool", "pip/pyproject",
				"error", err,
				"output", string(out),
			)
		}
		return
	}

	p.logger.Info("no_dependency_file_found", "agent", spec.Name)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
