// Package report reduces agent run results into the unified report file.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
)

// Build maps each successful agent with a collected artifact to the
// path of its copy in the output directory. Failed runs and runs that
// produced no artifact are omitted.
func Build(results []agent.Result) map[string]string {
	artifacts := make(map[string]string)
	for _, r := range results {
		if !r.Succeeded || r.ArtifactPath == "" {
			continue
		}
		artifacts[r.AgentName] = r.ArtifactPath
	}
	return artifacts
}

// Write persists the artifact map as indented JSON at path.
func Write(path string, artifacts map[string]string) error {
	data, err := json.MarshalIndent(artifacts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report to %s: %w", path, err)
	}
	return nil
}

// Names returns the agent names present in the report, sorted.
func Names(artifacts map[string]string) []string {
	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
