// Package main provides the semblueprint binary entry point.
// semblueprint validates, scores and renders FastAPI smart blueprints and
// tracks the blueprint authoring backlog.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semblueprint"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	app := &App{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "FastAPI blueprint toolkit",
		Long: `semblueprint works with smart blueprints: JSON documents that embed a
FastAPI code template and its parameter schema.

It provides:
- Structural validation and quality scoring of blueprint files
- Template rendering with parameter checking
- Tracking of the blueprint authoring backlog`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd, configPath, logLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
		validateCmd(app),
		scoreCmd(app),
		assessCmd(app),
		renderCmd(app),
		extractCmd(app),
		metadataCmd(app),
		listCmd(app),
		scaffoldCmd(app),
		removeCmd(app),
		taskCmd(app),
		configCmd(app),
	)

	return cmd
}
