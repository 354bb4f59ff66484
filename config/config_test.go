package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Blueprints.Root != "blueprints" {
		t.Errorf("expected default root blueprints, got %s", cfg.Blueprints.Root)
	}
	if cfg.Quality.StandardValue() != 9.5 {
		t.Errorf("expected default standard 9.5, got %f", cfg.Quality.StandardValue())
	}
	if cfg.Tracker.ProgressFile == "" {
		t.Error("expected a default progress file")
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("expected debounce 200ms, got %v", cfg.Watch.Debounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing root",
			modify:  func(c *Config) { c.Blueprints.Root = "" },
			wantErr: true,
		},
		{
			name:    "missing progress file",
			modify:  func(c *Config) { c.Tracker.ProgressFile = "" },
			wantErr: true,
		},
		{
			name:    "standard too low",
			modify:  func(c *Config) { c.Quality.Standard = float64Ptr(-1) },
			wantErr: true,
		},
		{
			name:    "standard too high",
			modify:  func(c *Config) { c.Quality.Standard = float64Ptr(10.5) },
			wantErr: true,
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Watch.Debounce = -time.Second },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
blueprints:
  root: "backend/blueprints"
  layers:
    routes: "http/routes"
tracker:
  progress_file: "tracking/progress.json"
  metrics_file: "metrics/semblueprint.prom"
quality:
  rubric_file: "rubric.yaml"
  standard: 8
watch:
  debounce: 1s
log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Blueprints.Root != "backend/blueprints" {
		t.Errorf("expected root backend/blueprints, got %s", cfg.Blueprints.Root)
	}
	if cfg.Blueprints.Layers["routes"] != "http/routes" {
		t.Errorf("expected routes layer http/routes, got %s", cfg.Blueprints.Layers["routes"])
	}
	if cfg.Tracker.MetricsFile != "metrics/semblueprint.prom" {
		t.Errorf("expected metrics file, got %s", cfg.Tracker.MetricsFile)
	}
	if cfg.Quality.StandardValue() != 8 {
		t.Errorf("expected standard 8, got %f", cfg.Quality.StandardValue())
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("blueprints: [\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadFromFile(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Blueprints: BlueprintsConfig{
			Layers: map[string]string{"tools": "mcp/tools"},
		},
		Quality: QualityConfig{
			Standard: float64Ptr(7),
		},
	}

	base.Merge(override)

	if base.Quality.StandardValue() != 7 {
		t.Errorf("expected standard 7, got %f", base.Quality.StandardValue())
	}
	// Root should remain from base since override didn't set it
	if base.Blueprints.Root != "blueprints" {
		t.Errorf("expected root to remain default, got %s", base.Blueprints.Root)
	}
	if base.Blueprints.Layers["tools"] != "mcp/tools" {
		t.Errorf("expected tools layer mcp/tools, got %s", base.Blueprints.Layers["tools"])
	}

	base.Merge(nil)
	if base.Quality.StandardValue() != 7 {
		t.Error("merging nil should not change the config")
	}
}

func TestConfigMerge_ZeroStandard(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "semblueprint.yaml")
	if err := os.WriteFile(configPath, []byte("quality:\n  standard: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	override, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	base := DefaultConfig()
	base.Merge(override)
	if got := base.Quality.StandardValue(); got != 0 {
		t.Errorf("explicit zero standard should override the default, got %f", got)
	}

	base.Merge(&Config{})
	if got := base.Quality.StandardValue(); got != 0 {
		t.Errorf("unset standard should not override, got %f", got)
	}
	if err := base.Validate(); err != nil {
		t.Errorf("zero standard should validate: %v", err)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Blueprints.Root = "saved"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Blueprints.Root != "saved" {
		t.Errorf("expected root saved, got %s", loaded.Blueprints.Root)
	}
	if loaded.Watch.Debounce != cfg.Watch.Debounce {
		t.Errorf("expected debounce %v, got %v", cfg.Watch.Debounce, loaded.Watch.Debounce)
	}
}

func TestResolve(t *testing.T) {
	cfg := &Config{Dir: "/project"}

	if got := cfg.Resolve("blueprints"); got != filepath.Join("/project", "blueprints") {
		t.Errorf("expected joined path, got %s", got)
	}
	if got := cfg.Resolve("/abs/file"); got != "/abs/file" {
		t.Errorf("expected absolute path unchanged, got %s", got)
	}
	if got := cfg.Resolve(""); got != "" {
		t.Errorf("expected empty path unchanged, got %s", got)
	}
}
