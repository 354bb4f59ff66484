package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/semblueprint/config"
)

func configCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}
	cmd.AddCommand(configInitCmd(app), configShowCmd(app))
	return cmd
}

func configInitCmd(app *App) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.ProjectConfigFile + " in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				dir = cwd
			}

			path, created, err := config.NewLoader(app.logger).EnsureProjectConfig(dir)
			if err != nil {
				return err
			}
			if !created {
				app.printf("Config already exists at %s\n", path)
				return nil
			}
			app.printf("Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to create the config in (default: working directory)")
	return cmd
}

func configShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(app.cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			app.printf("# resolved against %s\n%s", app.cfg.Dir, data)
			return nil
		},
	}
}
