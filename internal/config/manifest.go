package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/randomizedcoder/go-agent-swarm/internal/agent"
)

// Manifest is the on-disk agents configuration: an ordered list of agent
// specs.
type Manifest struct {
	Agents []agent.Spec `json:"agents"`
}

// LoadManifest reads and parses the agents manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading agents manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing agents manifest %s: %w", path, err)
	}

	return &m, nil
}

// Eligible returns the specs that can actually run, preserving manifest
// order. Specs missing a name or working directory are dropped silently.
func (m *Manifest) Eligible() []agent.Spec {
	specs := make([]agent.Spec, 0, len(m.Agents))
	for _, s := range m.Agents {
		if s.Eligible() {
			specs = append(specs, s)
		}
	}
	return specs
}
