// Package config provides configuration loading and management for semblueprint.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete semblueprint configuration
type Config struct {
	Blueprints BlueprintsConfig `yaml:"blueprints"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Quality    QualityConfig    `yaml:"quality"`
	Watch      WatchConfig      `yaml:"watch"`
	Log        LogConfig        `yaml:"log"`

	// Dir is the directory relative paths resolve against. Set by the
	// loader to the project config's directory or the working directory.
	Dir string `yaml:"-"`
}

// BlueprintsConfig locates the blueprint store
type BlueprintsConfig struct {
	// Root is the blueprint tree root
	Root string `yaml:"root"`
	// Layers maps component layers to directories under Root (empty = built-in layout)
	Layers map[string]string `yaml:"layers,omitempty"`
}

// TrackerConfig configures task tracking
type TrackerConfig struct {
	// ProgressFile is the persisted progress document
	ProgressFile string `yaml:"progress_file"`
	// MetricsFile receives Prometheus textfile metrics after each change (empty = disabled)
	MetricsFile string `yaml:"metrics_file,omitempty"`
	// CatalogueFile replaces the built-in task catalogue (empty = built-in)
	CatalogueFile string `yaml:"catalogue_file,omitempty"`
}

// QualityConfig configures the quality scorer
type QualityConfig struct {
	// RubricFile replaces the built-in rubric (empty = built-in)
	RubricFile string `yaml:"rubric_file,omitempty"`
	// Standard is the minimum quality score for an assessment to pass (0-10).
	// Nil means DefaultQualityStandard; 0 accepts any quality score.
	Standard *float64 `yaml:"standard,omitempty"`
}

// DefaultQualityStandard is the standard used when none is configured.
const DefaultQualityStandard = 9.5

// StandardValue returns the configured standard or DefaultQualityStandard.
func (q QualityConfig) StandardValue() float64 {
	if q.Standard == nil {
		return DefaultQualityStandard
	}
	return *q.Standard
}

func float64Ptr(v float64) *float64 {
	return &v
}

// WatchConfig configures validate --watch
type WatchConfig struct {
	// Debounce is how long changes accumulate before re-validation
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Blueprints: BlueprintsConfig{
			Root: "blueprints",
		},
		Tracker: TrackerConfig{
			ProgressFile: filepath.Join(".semblueprint", "task_progress.json"),
		},
		Quality: QualityConfig{
			Standard: float64Ptr(DefaultQualityStandard),
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Blueprints.Root == "" {
		return fmt.Errorf("blueprints.root is required")
	}
	if c.Tracker.ProgressFile == "" {
		return fmt.Errorf("tracker.progress_file is required")
	}
	if s := c.Quality.StandardValue(); s < 0 || s > 10 {
		return fmt.Errorf("quality.standard must be between 0 and 10")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// Resolve makes a configured path absolute against Dir. Empty stays empty.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Blueprints
	if other.Blueprints.Root != "" {
		c.Blueprints.Root = other.Blueprints.Root
	}
	if len(other.Blueprints.Layers) > 0 {
		if c.Blueprints.Layers == nil {
			c.Blueprints.Layers = make(map[string]string, len(other.Blueprints.Layers))
		}
		for layer, dir := range other.Blueprints.Layers {
			c.Blueprints.Layers[layer] = dir
		}
	}

	// Tracker
	if other.Tracker.ProgressFile != "" {
		c.Tracker.ProgressFile = other.Tracker.ProgressFile
	}
	if other.Tracker.MetricsFile != "" {
		c.Tracker.MetricsFile = other.Tracker.MetricsFile
	}
	if other.Tracker.CatalogueFile != "" {
		c.Tracker.CatalogueFile = other.Tracker.CatalogueFile
	}

	// Quality
	if other.Quality.RubricFile != "" {
		c.Quality.RubricFile = other.Quality.RubricFile
	}
	if other.Quality.Standard != nil {
		c.Quality.Standard = float64Ptr(*other.Quality.Standard)
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
