// Package process provides abstractions for building external agent
// commands.
package process

import (
	"context"
	"os/exec"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
)

// Builder creates executable commands for agent specs.
// This interface keeps the supervisor decoupled from how agent command
// lines are assembled, and lets tests substitute short-lived commands.
type Builder interface {
	// BuildCommand returns a ready-to-start command for the given spec.
	// The command must NOT be started yet.
	BuildCommand(ctx context.Context, spec agent.Spec) (*exec.Cmd, error)

	// Name returns a human-readable name for this process type.
	Name() string
}

// ShellBuilder builds agent commands by handing the spec's command line to
// the shell, matching the manifest's free-form "script" field. When Param
// is set it is appended as the final argument.
type ShellBuilder struct {
	// Param is the shared run parameter appended to every command line.
	// Already resolved to an absolute path by the caller.
	Param string
}

// NewShellBuilder creates a ShellBuilder with the given shared parameter.
func NewShellBuilder(param string) *ShellBuilder {
	return &ShellBuilder{Param: param}
}

// BuildCommand implements Builder.
//
// The command is deliberately not bound to ctx: termination is owned by
// the supervisor's SIGTERM/grace/SIGKILL escalation, not the runtime's
// immediate kill-on-cancel.
func (b *ShellBuilder) BuildCommand(ctx context.Context, spec agent.Spec) (*exec.Cmd, error) {
	command := spec.Command
	if b.Param != "" {
		command += " " + b.Param
	}

	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = spec.Dir
	return cmd, nil
}

// Name implements Builder.
func (b *ShellBuilder) Name() string {
	return "shell"
}

// CommandString returns the shell command line that would run for a spec.
// Used by -print-agents for diagnostics.
func (b *ShellBuilder) CommandString(spec agent.Spec) string {
	command := spec.Command
	if b.Param != "" {
		command += " " + b.Param
	}
	return command
}
