// Package agent defines the static description of one unit of work and
// the result produced when it runs.
package agent

import "time"

// Spec describes one agent: an external program run in its own working
// directory that is expected to leave an output file behind.
//
// The JSON field names match the agents manifest format.
type Spec struct {
	// Name uniquely identifies the agent. Result aggregation is keyed
	// by Name, so the manifest must not repeat it.
	Name string `json:"name"`

	// Dir is the working directory the command executes in.
	Dir string `json:"path"`

	// Command is the command line to execute in Dir. A shared run
	// parameter may be appended by the orchestrator.
	Command string `json:"script"`

	// Output is the path, relative to Dir, where the agent writes its
	// result on success.
	Output string `json:"script-output"`

	// ReportAs is the canonical filename the collected artifact is
	// stored under in the shared output directory.
	ReportAs string `json:"output"`

	// Repo is an optional git URL. When set and Dir does not exist yet,
	// the provisioner clones it before the run.
	Repo string `json:"repo,omitempty"`
}

// Eligible reports whether the spec can be run at all. Specs missing a
// name or working directory are skipped silently, not treated as errors.
func (s Spec) Eligible() bool {
	return s.Name != "" && s.Dir != ""
}

// FailureReason classifies why an agent run did not succeed.
type FailureReason int

const (
	// ReasonNone means the run succeeded.
	ReasonNone FailureReason = iota

	// ReasonDirectoryNotFound means the working directory did not exist;
	// no process was spawned.
	ReasonDirectoryNotFound

	// ReasonSpawnError means the process could not be created or reaped.
	ReasonSpawnError

	// ReasonNonZeroExit means the process exited with a non-zero code.
	ReasonNonZeroExit

	// ReasonTimedOut means the process exceeded the run timeout and was
	// terminated.
	ReasonTimedOut

	// ReasonCancelled means the run was stopped by global cancellation.
	ReasonCancelled
)

// String returns a human-readable name for the failure reason.
func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonDirectoryNotFound:
		return "directory_not_found"
	case ReasonSpawnError:
		return "spawn_error"
	case ReasonNonZeroExit:
		return "non_zero_exit"
	case ReasonTimedOut:
		return "timed_out"
	case ReasonCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result captures the outcome of one agent run. It is created once when
// the run terminates and is immutable afterwards.
type Result struct {
	AgentName string

	// Succeeded is true when the process exited zero. A succeeded run
	// may still have an empty ArtifactPath if the agent never wrote its
	// declared output file.
	Succeeded bool

	// ArtifactPath is the collected artifact location in the shared
	// output directory. Empty unless Succeeded and collation found the
	// declared output.
	ArtifactPath string

	Reason   FailureReason
	ExitCode int

	// Stdout and Stderr hold the full captured streams, surfaced for
	// diagnostics on non-zero exit.
	Stdout string
	Stderr string

	Duration time.Duration
}
