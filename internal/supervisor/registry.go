// Package supervisor manages the lifecycle of individual agent processes.
package supervisor

import (
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Registry is the set of live child processes for one orchestration run.
// It holds non-owning references: each Supervisor exclusively owns its
// command for the run's duration and removes it the moment the process is
// confirmed reaped. The registry exists so global cancellation can reach
// every live process without going through the supervisors.
//
// The registry is owned by the Orchestrator and passed by handle, never
// kept as package-level state, so independent engines (and tests) cannot
// cross-contaminate.
type Registry struct {
	mu    sync.Mutex
	procs map[*exec.Cmd]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		procs: make(map[*exec.Cmd]struct{}),
	}
}

// add registers a started command. Called immediately after spawn, before
// any other run logic, so cancellation can always find it.
func (r *Registry) add(cmd *exec.Cmd) {
	r.mu.Lock()
	r.procs[cmd] = struct{}{}
	r.mu.Unlock()
}

// remove deregisters a command. Safe to call for a command that was never
// added.
func (r *Registry) remove(cmd *exec.Cmd) {
	r.mu.Lock()
	delete(r.procs, cmd)
	r.mu.Unlock()
}

// Len returns the number of live processes currently registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.procs)
}

// snapshot copies the current set so callers never signal processes while
// holding the lock.
func (r *Registry) snapshot() []*exec.Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()

	procs := make([]*exec.Cmd, 0, len(r.procs))
	for cmd := range r.procs {
		procs = append(procs, cmd)
	}
	return procs
}

// TerminateAll sweeps every live process with the SIGTERM/grace/SIGKILL
// escalation. This is the orchestrator's cancellation safety net: each
// supervisor also observes cancellation itself, but the sweep bounds total
// cancellation latency independently of any one supervisor.
//
// Signalling an already-reaped process fails harmlessly; errors are
// ignored. Forceful kill is best effort - an uncooperative process may
// survive it, which is accepted rather than hidden.
func (r *Registry) TerminateAll(grace time.Duration) {
	procs := r.snapshot()
	if len(procs) == 0 {
		return
	}

	for _, cmd := range procs {
		signalGroup(cmd, syscall.SIGTERM)
	}

	time.Sleep(grace)

	for _, cmd := range procs {
		signalGroup(cmd, syscall.SIGKILL)
	}
}

// signalGroup sends sig to the command's process group, falling back to
// the process itself when the group cannot be resolved.
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd.Process == nil {
		return
	}

	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		_ = syscall.Kill(-pgid, sig)
		return
	}
	_ = cmd.Process.Signal(sig)
}
