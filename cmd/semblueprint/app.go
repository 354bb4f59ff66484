package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semblueprint/assess"
	"github.com/c360studio/semblueprint/blueprint"
	"github.com/c360studio/semblueprint/config"
	"github.com/c360studio/semblueprint/quality"
	"github.com/c360studio/semblueprint/tracker"
	"github.com/c360studio/semblueprint/validation"
)

// App wires configuration to the domain packages for one command run.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

func (a *App) init(cmd *cobra.Command, configPath, logLevel string) error {
	a.out = cmd.OutOrStdout()

	// Bootstrap logger for config loading; replaced once the level is known.
	bootstrap := newLogger(cmd.ErrOrStderr(), logLevel)
	cfg, err := config.NewLoader(bootstrap).Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	a.logger = newLogger(cmd.ErrOrStderr(), logLevel)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (a *App) store() *blueprint.Store {
	layers := make(map[blueprint.Layer]string, len(a.cfg.Blueprints.Layers))
	for name, dir := range a.cfg.Blueprints.Layers {
		layer, err := blueprint.ParseLayer(name)
		if err != nil {
			a.logger.Warn("Ignoring layer override", "layer", name, "error", err)
			continue
		}
		layers[layer] = dir
	}
	return blueprint.NewStore(a.cfg.Resolve(a.cfg.Blueprints.Root), layers, a.logger)
}

func (a *App) tracker() (*tracker.Tracker, error) {
	tasks := tracker.Catalogue()
	if path := a.cfg.Resolve(a.cfg.Tracker.CatalogueFile); path != "" {
		custom, err := tracker.LoadCatalogue(path)
		if err != nil {
			return nil, err
		}
		tasks = custom
	}
	return tracker.New(a.cfg.Resolve(a.cfg.Tracker.ProgressFile), tasks, a.logger), nil
}

func (a *App) scorer() (*quality.Scorer, error) {
	path := a.cfg.Resolve(a.cfg.Quality.RubricFile)
	if path == "" {
		return quality.DefaultScorer(), nil
	}
	rubric, err := quality.LoadRubric(path)
	if err != nil {
		return nil, err
	}
	return quality.NewScorer(rubric)
}

func (a *App) assessor() (*assess.Assessor, error) {
	scorer, err := a.scorer()
	if err != nil {
		return nil, err
	}
	return assess.New(validation.NewValidator(), scorer, a.cfg.Quality.StandardValue()), nil
}

// resolve loads a blueprint given a file path or a stored id.
func (a *App) resolve(ref string) (*blueprint.Blueprint, string, error) {
	return a.store().Resolve(ref)
}

// resolvePath maps a reference to a file path without loading it, so load
// failures can be reported as failing checks.
func (a *App) resolvePath(ref string) string {
	if _, err := os.Stat(ref); err == nil || strings.HasSuffix(ref, blueprint.FileExt) {
		return ref
	}
	path, err := a.store().Path(ref)
	if err != nil {
		return ref
	}
	return path
}

// afterTaskChange refreshes the metrics textfile when one is configured.
func (a *App) afterTaskChange(t *tracker.Tracker) {
	path := a.cfg.Resolve(a.cfg.Tracker.MetricsFile)
	if path == "" {
		return
	}
	if err := t.WriteMetrics(path); err != nil {
		a.logger.Warn("Failed to write metrics", "path", path, "error", err)
	}
}

func (a *App) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

var (
	errValidationFailed = errors.New("validation failed")
	errBelowStandard    = errors.New("quality standard not met")
)
