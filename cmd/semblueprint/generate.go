package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semblueprint/blueprint"
	"github.com/c360studio/semblueprint/syntax"
	"github.com/c360studio/semblueprint/tracker"
)

func renderCmd(app *App) *cobra.Command {
	var (
		params     []string
		paramsFile string
		outPath    string
		testOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "render <path|id>",
		Short: "Render a blueprint with parameter bindings",
		Long: `Render checks the bindings against the blueprint's parameter schema and
renders its code template. Nothing is written when a required parameter is
missing, a value has the wrong type or a pattern does not match.

Bindings come from --params-file (a JSON object) and --param key=value
flags; flags win. Parameters left unbound take their declared default. Flag
values are converted to the declared parameter type.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, _, err := app.resolve(args[0])
			if err != nil {
				return err
			}

			bindings, err := buildBindings(bp, paramsFile, params)
			if err != nil {
				return err
			}

			out, err := blueprint.Generate(bp, bindings)
			if err != nil {
				return err
			}

			text := out.Code
			if testOnly {
				if !out.HasTest() {
					return fmt.Errorf("blueprint %s has no test template", bp.ID)
				}
				text = out.Test
			}

			if outPath == "" {
				app.printf("%s", text)
				return nil
			}
			if err := blueprint.WriteOutput(outPath, text); err != nil {
				return err
			}
			app.logger.Info("Rendered blueprint", "id", bp.ID, "path", outPath)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Parameter binding key=value (repeatable)")
	cmd.Flags().StringVar(&paramsFile, "params-file", "", "JSON file with parameter bindings")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write output to file instead of stdout")
	cmd.Flags().BoolVar(&testOnly, "test", false, "Render the test template instead of the code template")
	return cmd
}

// buildBindings layers declared defaults, a params file and key=value flags.
// Flag values are converted to the declared parameter type.
func buildBindings(bp *blueprint.Blueprint, paramsFile string, params []string) (map[string]any, error) {
	bindings := make(map[string]any)
	for name, spec := range bp.Parameters {
		if spec.Default != nil {
			bindings[name] = spec.Default
		}
	}
	if paramsFile != "" {
		data, err := os.ReadFile(paramsFile)
		if err != nil {
			return nil, fmt.Errorf("read params file: %w", err)
		}
		if err := json.Unmarshal(data, &bindings); err != nil {
			return nil, fmt.Errorf("parse params file: %w", err)
		}
	}

	for _, p := range params {
		key, raw, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", p)
		}
		value, err := convertParam(bp.Parameters[key], raw)
		if err != nil {
			return nil, fmt.Errorf("--param %s: %w", key, err)
		}
		bindings[key] = value
	}
	return bindings, nil
}

func convertParam(spec blueprint.ParameterSpec, raw string) (any, error) {
	switch spec.Type {
	case blueprint.TypeBoolean:
		return strconv.ParseBool(raw)
	case blueprint.TypeInteger:
		return strconv.Atoi(raw)
	default:
		return raw, nil
	}
}

func extractCmd(app *App) *cobra.Command {
	var (
		outDir string
		check  bool
	)

	cmd := &cobra.Command{
		Use:   "extract <path|id>",
		Short: "Render a blueprint with sample parameters",
		Long: `Extract renders the blueprint with generated sample bindings, producing
an example of the code it generates. With --check the output is parsed as
Python and syntax errors fail the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, _, err := app.resolve(args[0])
			if err != nil {
				return err
			}

			out, err := blueprint.Extract(bp)
			if err != nil {
				return err
			}

			if check {
				if err := checkOutput(cmd.Context(), app, out); err != nil {
					return err
				}
			}

			if outDir == "" {
				app.printf("%s", out.Code)
				return nil
			}

			base := strings.ReplaceAll(strings.TrimPrefix(bp.ID, "smart-"), "-", "_")
			codePath := filepath.Join(outDir, base+".py")
			if err := blueprint.WriteOutput(codePath, out.Code); err != nil {
				return err
			}
			app.printf("Wrote %s\n", codePath)
			if out.HasTest() {
				testPath := filepath.Join(outDir, "test_"+base+".py")
				if err := blueprint.WriteOutput(testPath, out.Test); err != nil {
					return err
				}
				app.printf("Wrote %s\n", testPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write sample files to")
	cmd.Flags().BoolVar(&check, "check", false, "Check the rendered output for Python syntax errors")
	return cmd
}

func checkOutput(ctx context.Context, app *App, out *blueprint.Output) error {
	problems, err := syntaxProblems(ctx, out)
	if err != nil {
		return err
	}
	for _, p := range problems {
		app.printf("%s %s\n", FailStyle.Render("syntax"), p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d syntax problem(s) in rendered output", len(problems))
	}
	app.logger.Debug("Rendered output parsed cleanly", "id", out.BlueprintID)
	return nil
}

// syntaxProblems parses the rendered code and test files as Python. Each
// problem is prefixed with the file it belongs to.
func syntaxProblems(ctx context.Context, out *blueprint.Output) ([]string, error) {
	checker := syntax.NewPythonChecker()
	files := []struct{ name, src string }{{"code", out.Code}}
	if out.HasTest() {
		files = append(files, struct{ name, src string }{"test", out.Test})
	}

	var problems []string
	for _, f := range files {
		found, err := checker.Check(ctx, []byte(f.src))
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			problems = append(problems, f.name+":"+p.String())
		}
	}
	return problems, nil
}

func metadataCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <path|id>",
		Short: "Print blueprint generation metadata as JSON",
		Long: `Metadata prints the blueprint's id, parameters and generation hints.
"validated" is true when the blueprint renders with sample parameters and the
output parses as Python.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, _, err := app.resolve(args[0])
			if err != nil {
				return err
			}
			info := blueprint.Describe(bp)
			if out, err := blueprint.Extract(bp); err == nil {
				problems, err := syntaxProblems(cmd.Context(), out)
				info.Validated = err == nil && len(problems) == 0
			}
			return app.printJSON(info)
		},
	}
}

func listCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blueprints in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := app.store()
			summaries, err := store.List()
			if err != nil {
				return err
			}
			if asJSON {
				return app.printJSON(summaries)
			}
			if len(summaries) == 0 {
				app.printf("No blueprints under %s\n", store.Root())
				return nil
			}
			for _, s := range summaries {
				rel, err := filepath.Rel(store.Root(), s.Path)
				if err != nil {
					rel = s.Path
				}
				app.printf("%-32s %-8s %s\n", HeaderStyle.Render(s.ID), s.Version, DimStyle.Render(rel))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the listing as JSON")
	return cmd
}

func scaffoldCmd(app *App) *cobra.Command {
	var (
		layerName   string
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "scaffold <id>",
		Short: "Create a starter blueprint",
		Long: `Scaffold writes a starter blueprint that passes structural validation.
When the id names a catalogue task the blueprint goes to the task's location
and takes its name and purpose; otherwise --layer is required.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := blueprint.ValidateID(id); err != nil {
				return err
			}

			store := app.store()
			if path, err := store.Path(id); err == nil {
				return fmt.Errorf("blueprint %s already exists at %s", id, path)
			} else if !errors.Is(err, blueprint.ErrNotFound) {
				return err
			}

			t, err := app.tracker()
			if err != nil {
				return err
			}
			task, taskErr := t.Task(id)

			bp := blueprint.Skeleton(id, name, description)
			var path string
			switch {
			case layerName != "":
				layer, err := blueprint.ParseLayer(layerName)
				if err != nil {
					return err
				}
				fillFromTask(bp, task, taskErr)
				path, err = store.Save(layer, bp)
				if err != nil {
					return err
				}
			case taskErr == nil:
				fillFromTask(bp, task, nil)
				path, err = store.SaveIn(task.Location, bp)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("%s is not a catalogue task; pass --layer", id)
			}

			app.printf("Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&layerName, "layer", "", "Component layer (routes, models, services, middleware, database, system, tools)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

// fillFromTask defaults empty name and description from a catalogue task.
func fillFromTask(bp *blueprint.Blueprint, task tracker.Task, taskErr error) {
	if taskErr == nil {
		if bp.Name == "" {
			bp.Name = task.Name
		}
		if bp.Description == "" {
			bp.Description = task.Purpose
		}
	}
	if bp.Name == "" {
		bp.Name = bp.ID
	}
	if bp.Description == "" {
		bp.Description = bp.Name
	}
}

func removeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a blueprint from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store().Delete(args[0]); err != nil {
				return err
			}
			app.printf("Removed %s\n", args[0])
			return nil
		},
	}
}
