// Package config loads optional YAML overrides for the replay
// coordinator's retry budget and backoff parameters.
package config

import (
	"fmt"
	"os"

	"github.com/cuemby/kvengine/pkg/replay"
	"gopkg.in/yaml.v3"
)

// ReplayConfig mirrors replay.Config in a form suited to YAML
// unmarshaling; field names match the keys documented for the
// coordinator's retry behavior.
type ReplayConfig struct {
	MaxAttempts        int `yaml:"max_attempts"`
	RetryBaseMS        int `yaml:"retry_base_ms"`
	RetryPerConflictMS int `yaml:"retry_per_conflict_ms"`
	RetryJitterMS      int `yaml:"retry_jitter_ms"`
}

// DefaultReplayConfig matches replay.DefaultConfig.
func DefaultReplayConfig() ReplayConfig {
	d := replay.DefaultConfig()
	return ReplayConfig{
		MaxAttempts:        d.MaxAttempts,
		RetryBaseMS:        d.BaseMS,
		RetryPerConflictMS: d.PerConflictMS,
		RetryJitterMS:      d.JitterMS,
	}
}

// ToReplayConfig converts to the type the coordinator actually
// consumes.
func (c ReplayConfig) ToReplayConfig() replay.Config {
	return replay.Config{
		MaxAttempts:   c.MaxAttempts,
		BaseMS:        c.RetryBaseMS,
		PerConflictMS: c.RetryPerConflictMS,
		JitterMS:      c.RetryJitterMS,
	}
}

// LoadReplayConfig reads a YAML file at path and merges it over
// DefaultReplayConfig. A missing file is not an error; it simply yields
// the defaults, matching how a benchmark run with no --config flag
// should behave.
func LoadReplayConfig(path string) (ReplayConfig, error) {
	cfg := DefaultReplayConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
