// Package collate copies agent output artifacts into the shared output
// directory under canonical names.
package collate

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
)

// Collator collects declared agent outputs into one output directory.
// It implements supervisor.Collector.
type Collator struct {
	outputDir string
}

// New creates a Collator writing into outputDir.
func New(outputDir string) *Collator {
	return &Collator{outputDir: outputDir}
}

// Collect locates the spec's declared output under its working directory
// and copies it to outputDir under the spec's canonical name.
//
// Returns the destination path, or empty when the agent declared no output
// file or never wrote it - both are warnings for the caller, never run
// failures. A non-nil error means the copy itself failed.
func (c *Collator) Collect(spec agent.Spec) (string, error) {
	if spec.Output == "" || spec.ReportAs == "" {
		return "", nil
	}

	src := filepath.Join(spec.Dir, spec.Output)
	if _, err := os.Stat(src); err != nil {
		return "", nil
	}

	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	dst := filepath.Join(c.outputDir, spec.ReportAs)
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("copying %s: %w", src, err)
	}

	return dst, nil
}

// copyFile copies src to dst, overwriting dst and preserving the source
// file's mode and timestamps where the filesystem allows.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Best effort: mtime preservation is cosmetic.
	_ = os.Chtimes(dst, time.Now(), info.ModTime())
	return nil
}

// ArchiveExisting moves a non-empty output directory aside to
// output_archive_<timestamp> so a fresh run never mixes artifacts with a
// previous one. A missing or empty directory is left alone.
func ArchiveExisting(outputDir string, logger *slog.Logger) (string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil || len(entries) == 0 {
		return "", nil
	}

	archive := fmt.Sprintf("%s_archive_%s",
		filepath.Clean(outputDir),
		time.Now().Format("20060102_150405"),
	)
	if err := os.Rename(outputDir, archive); err != nil {
		return "", fmt.Errorf("archiving previous output: %w", err)
	}

	logger.Info("previous_output_archived",
		"from", outputDir,
		"to", archive,
	)
	return archive, nil
}
