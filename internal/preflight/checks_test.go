package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunAllPasses(t *testing.T) {
	dir := t.TempDir()

	result := RunAll(1, dir, false)
	if result == nil {
		t.Fatal("RunAll returned nil")
	}
	if len(result.Checks) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(result.Checks))
	}
	// With a single worker and a writable temp dir every check should
	// pass on any sane development machine.
	if !result.Passed {
		for _, c := range result.Checks {
			if !c.Passed {
				t.Errorf("check %q failed: %s", c.Name, c.Message)
			}
		}
	}
}

func TestCheckOutputDirUnwritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}

	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0o555); err != nil {
		t.Fatal(err)
	}

	check := checkOutputDir(locked)
	if check.Passed {
		t.Error("expected unwritable directory to fail the check")
	}
}

func TestCheckOutputDirCreatesInParent(t *testing.T) {
	dir := t.TempDir()
	// Output dir does not exist yet, the parent is probed instead.
	check := checkOutputDir(filepath.Join(dir, "not-yet-created"))
	if !check.Passed {
		t.Errorf("expected parent probe to pass: %s", check.Message)
	}
}

func TestCheckGitNotRequired(t *testing.T) {
	check := checkGit(false)
	// Whether or not git is installed, an optional check never fails.
	if !check.Passed {
		t.Errorf("optional git check must pass, got: %s", check.Message)
	}
}

func TestCheckString(t *testing.T) {
	tests := []struct {
		name  string
		check Check
		want  string
	}{
		{
			name:  "passed with counts",
			check: Check{Name: "file_descriptors", Required: 100, Actual: 1024, Passed: true},
			want:  "✓",
		},
		{
			name:  "failed",
			check: Check{Name: "output_dir", Passed: false, Message: "not writable"},
			want:  "✗",
		},
		{
			name:  "warning",
			check: Check{Name: "git", Passed: true, Warning: true, Message: "not found"},
			want:  "⚠",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.check.String()
			if !strings.Contains(got, tt.want) {
				t.Errorf("String() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestSuggestFixKnownChecks(t *testing.T) {
	for _, name := range []string{"file_descriptors", "process_limit", "git", "output_dir"} {
		if fix := suggestFix(name); fix == "see documentation" {
			t.Errorf("no specific fix for %q", name)
		}
	}
}
