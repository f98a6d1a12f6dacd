// Package config loads the cluster configuration read once at process
// startup: the coordinator's own endpoint and the ordered list of
// worker endpoints that gives each worker its node id.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ClusterConfig is the on-disk shape of the cluster configuration file.
type ClusterConfig struct {
	Master  string   `json:"master"`
	Workers []string `json:"workers"`
}

// Load reads and validates the cluster configuration at path.
func Load(path string) (*ClusterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cluster config: %w", err)
	}

	var cfg ClusterConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse cluster config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects an empty master, an empty worker list, and
// duplicate worker endpoints, mirroring the no-empty/no-duplicate
// checks a cluster configuration needs before any node id can be
// trusted (a worker's id is its index into Workers).
func Validate(cfg *ClusterConfig) error {
	if cfg.Master == "" {
		return fmt.Errorf("cluster config: master endpoint cannot be empty")
	}
	if len(cfg.Workers) == 0 {
		return fmt.Errorf("cluster config: worker list cannot be empty")
	}

	seen := make(map[string]bool, len(cfg.Workers))
	for _, w := range cfg.Workers {
		if w == "" {
			return fmt.Errorf("cluster config: empty worker endpoint")
		}
		if seen[w] {
			return fmt.Errorf("cluster config: duplicate worker endpoint %q", w)
		}
		seen[w] = true
	}
	return nil
}

// Size is the fixed cluster size N, the number of configured workers.
func (c *ClusterConfig) Size() int {
	return len(c.Workers)
}
