// Package pipeline coordinates the build, layout, and paint phases into
// frames and carries the frame-level configuration.
package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Config controls per-frame pipeline behavior. The zero value is not
// usable; start from DefaultConfig or LoadConfig.
type Config struct {
	// TargetFPS sets the frame budget: budget = 1s / TargetFPS.
	TargetFPS int `yaml:"target_fps"`

	// ParallelBuild rebuilds disjoint dirty subtrees concurrently.
	ParallelBuild bool `yaml:"parallel_build"`

	// MaxBuildIterations caps build passes per frame before the frame
	// aborts with a convergence error.
	MaxBuildIterations int `yaml:"max_build_iterations"`

	// SkipCleanPhases skips a phase whose dirty set is empty.
	SkipCleanPhases bool `yaml:"skip_clean_phases"`

	// StrictConstraints makes constraint violations fatal for the layout
	// phase instead of clamping and reporting.
	StrictConstraints bool `yaml:"strict_constraints"`

	Engine EngineConfig `yaml:"engine"`
}

// EngineConfig pins expectations about the embedding engine.
type EngineConfig struct {
	// Version, when set, must be a valid semantic version.
	Version string `yaml:"version"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		TargetFPS:          60,
		MaxBuildIterations: 100,
		SkipCleanPhases:    true,
	}
}

// LoadConfig reads a YAML config file, layering it over the defaults.
// A missing file is not an error; the defaults apply.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("pipeline: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("pipeline: parsing config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate checks the configuration for values the coordinator cannot
// run with.
func (c Config) Validate() error {
	if c.TargetFPS < 1 || c.TargetFPS > 1000 {
		return fmt.Errorf("pipeline: target_fps %d outside 1..1000", c.TargetFPS)
	}
	if c.MaxBuildIterations < 1 {
		return fmt.Errorf("pipeline: max_build_iterations %d must be at least 1", c.MaxBuildIterations)
	}
	if v := c.Engine.Version; v != "" {
		canonical := v
		if !strings.HasPrefix(canonical, "v") {
			canonical = "v" + canonical
		}
		if !semver.IsValid(canonical) {
			return fmt.Errorf("pipeline: engine.version %q is not a semantic version", v)
		}
	}
	return nil
}

// FrameBudget returns the wall-time budget for one frame.
func (c Config) FrameBudget() time.Duration {
	return time.Second / time.Duration(c.TargetFPS)
}
