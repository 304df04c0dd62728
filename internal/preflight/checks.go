// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name     string // Name of the check
	Required int    // Required value (if applicable)
	Actual   int    // Actual value found
	Passed   bool   // Whether the check passed
	Warning  bool   // True if it's a warning (non-fatal)
	Message  string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}

	if c.Required > 0 {
		return fmt.Sprintf("  %s %s: %d available (need %d)", status, c.Name, c.Actual, c.Required)
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// RunAll executes all preflight checks. clonesPending selects whether git
// availability is required or merely informational.
func RunAll(workers int, outputDir string, clonesPending bool) *Result {
	result := &Result{
		Checks: make([]Check, 0, 4),
		Passed: true,
	}

	fdCheck := checkFileDescriptors(workers)
	result.Checks = append(result.Checks, fdCheck)
	if !fdCheck.Passed {
		result.Passed = false
	}

	procCheck := checkProcessLimit(workers)
	result.Checks = append(result.Checks, procCheck)
	if !procCheck.Passed {
		result.Passed = false
	}

	gitCheck := checkGit(clonesPending)
	result.Checks = append(result.Checks, gitCheck)
	if !gitCheck.Passed {
		result.Passed = false
	}

	outCheck := checkOutputDir(outputDir)
	result.Checks = append(result.Checks, outCheck)
	if !outCheck.Passed {
		result.Passed = false
	}

	return result
}

// checkFileDescriptors verifies sufficient file descriptors are available.
func checkFileDescriptors(workers int) Check {
	var limit syscall.Rlimit
	syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit)

	// Each live agent holds a handful of FDs (stdout/stderr pipes,
	// artifact copies), plus orchestrator overhead.
	required := workers*8 + 64
	actual := int(limit.Cur)

	return Check{
		Name:     "file_descriptors",
		Required: required,
		Actual:   actual,
		Passed:   actual >= required,
		Message:  fmt.Sprintf("ulimit -n %d (need %d for %d workers)", actual, required, workers),
	}
}

// checkProcessLimit verifies sufficient process slots are available.
// RLIMIT_NPROC is not exported by the syscall package, so the soft limit
// is read from /proc/self/limits instead.
func checkProcessLimit(workers int) Check {
	// Each worker spawns a shell plus whatever the agent forks.
	required := workers*4 + 50

	data, err := os.ReadFile("/proc/self/limits")
	if err != nil {
		// Non-Linux or restricted access, assume OK
		return Check{
			Name:    "process_limit",
			Passed:  true,
			Warning: true,
			Message: "unable to check (non-Linux or restricted)",
		}
	}

	actual := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "Max processes") {
			fields := strings.Fields(line)
			if len(fields) >= 4 {
				if fields[3] == "unlimited" {
					actual = 1000000
				} else {
					fmt.Sscanf(fields[3], "%d", &actual)
				}
			}
			break
		}
	}

	if actual == 0 {
		return Check{
			Name:    "process_limit",
			Passed:  true,
			Warning: true,
			Message: "unable to determine (assuming OK)",
		}
	}

	return Check{
		Name:     "process_limit",
		Required: required,
		Actual:   actual,
		Passed:   actual >= required,
		Message:  fmt.Sprintf("ulimit -u %d (need %d)", actual, required),
	}
}

// checkGit verifies git is available. Only fatal when clones are pending.
func checkGit(required bool) Check {
	cmd := exec.Command("git", "--version")
	output, err := cmd.Output()

	if err != nil {
		return Check{
			Name:    "git",
			Passed:  !required,
			Warning: !required,
			Message: fmt.Sprintf("not found in PATH: %v", err),
		}
	}

	version := strings.TrimSpace(string(output))
	return Check{
		Name:    "git",
		Passed:  true,
		Message: version,
	}
}

// checkOutputDir verifies the output directory (or the directory it will
// be created in) is writable.
func checkOutputDir(outputDir string) Check {
	probe := outputDir
	if _, err := os.Stat(probe); err != nil {
		probe = filepath.Dir(outputDir)
	}

	tmp, err := os.CreateTemp(probe, ".preflight-*")
	if err != nil {
		return Check{
			Name:    "output_dir",
			Passed:  false,
			Message: fmt.Sprintf("%s is not writable: %v", probe, err),
		}
	}
	tmp.Close()
	os.Remove(tmp.Name())

	return Check{
		Name:    "output_dir",
		Passed:  true,
		Message: fmt.Sprintf("%s is writable", probe),
	}
}

// PrintResults prints the preflight check results to stdout.
func PrintResults(result *Result) {
	fmt.Println("Preflight checks:")
	for _, check := range result.Checks {
		fmt.Println(check.String())
		if !check.Passed {
			fmt.Printf("    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Println()
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "file_descriptors":
		return "ulimit -n 4096 (or edit /etc/security/limits.conf)"
	case "process_limit":
		return "ulimit -u 4096 (or edit /etc/security/limits.conf)"
	case "git":
		return "install git (apt install git / brew install git)"
	case "output_dir":
		return "choose a writable -output-dir"
	default:
		return "see documentation"
	}
}
