package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/semblueprint/blueprint"
	"github.com/c360studio/semblueprint/quality"
	"github.com/c360studio/semblueprint/validation"
	"github.com/c360studio/semblueprint/watch"
)

// reportView is the JSON form of a validation report.
type reportView struct {
	Path string `json:"path"`
	*validation.Report
	Passed bool `json:"passed"`
}

func validateCmd(app *App) *cobra.Command {
	var (
		asJSON   bool
		watching bool
	)

	cmd := &cobra.Command{
		Use:   "validate [path|glob|dir]...",
		Short: "Validate blueprint files against the structural rubric",
		Long: `Validate runs the structural rubric over each blueprint and prints a
PASS/WARNING/FAIL checklist. Directories are searched recursively for
*.json files. With no arguments the configured blueprint root is used.

The command exits non-zero when any blueprint has a FAIL result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{app.cfg.Resolve(app.cfg.Blueprints.Root)}
			}
			if watching {
				return runWatch(cmd, app, args)
			}

			paths, err := blueprint.ResolveFiles(args)
			if err != nil {
				return err
			}

			v := validation.NewValidator()
			failed := 0
			views := make([]reportView, 0, len(paths))
			for _, path := range paths {
				report := v.ValidateFile(path)
				if !report.Passed() {
					failed++
				}
				views = append(views, reportView{Path: path, Report: report, Passed: report.Passed()})
			}

			if asJSON {
				if err := app.printJSON(views); err != nil {
					return err
				}
			} else {
				for _, view := range views {
					app.printf("%s\n", formatReport(view.Path, view.Report))
				}
				app.printf("%d blueprint(s), %d failed\n", len(views), failed)
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d blueprint(s)", errValidationFailed, failed, len(views))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "Re-validate blueprints under a directory as they change")
	return cmd
}

func runWatch(cmd *cobra.Command, app *App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("--watch takes a single directory")
	}

	w, err := watch.New(watch.Config{
		Root:          args[0],
		DebounceDelay: app.cfg.Watch.Debounce,
		Logger:        app.logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	initial, err := w.Scan()
	if err != nil {
		return err
	}
	for _, ev := range initial {
		app.printf("%s\n", formatReport(ev.Path, ev.Report))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx, func(ev watch.Event) {
		if ev.Operation == watch.OpDelete {
			app.printf("%s %s\n", DimStyle.Render("removed"), ev.Path)
			return
		}
		app.printf("%s\n", formatReport(ev.Path, ev.Report))
	})
}

func scoreCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "score <path|id>",
		Short: "Score a blueprint template against the quality rubric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, _, err := app.resolve(args[0])
			if err != nil {
				return err
			}
			scorer, err := app.scorer()
			if err != nil {
				return err
			}

			score := scorer.Score(bp.CodeTemplate.Content)
			if asJSON {
				return app.printJSON(struct {
					BlueprintID string        `json:"blueprint_id"`
					Scores      quality.Score `json:"scores"`
					Overall     float64       `json:"overall"`
				}{bp.ID, score, score.Overall()})
			}

			matched := scorer.Explain(bp.CodeTemplate.Content)
			app.printf("%s\n", HeaderStyle.Render(bp.ID))
			for _, c := range quality.Categories {
				v := score.Get(c)
				app.printf("  %-22s %s %2d/10\n", c, bar(float64(v)), v)
				found := matched[c]
				sort.Strings(found)
				for _, desc := range found {
					app.printf("      %s %s\n", PassStyle.Render("+"), DimStyle.Render(desc))
				}
			}
			app.printf("  %-22s %s\n", "overall", ScoreStyle.Render(fmt.Sprintf("%.1f/10", score.Overall())))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print scores as JSON")
	return cmd
}

func assessCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "assess <path|id>",
		Short: "Validate and score a blueprint against the quality standard",
		Long: `Assess combines the structural report and the quality score. The
overall score is their mean; the blueprint meets the standard when the
report passes and the quality score reaches quality.standard.

The command exits non-zero when the standard is not met.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assessor, err := app.assessor()
			if err != nil {
				return err
			}

			result := assessor.AssessFile(app.resolvePath(args[0]))
			if asJSON {
				if err := app.printJSON(result); err != nil {
					return err
				}
			} else {
				app.printf("%s", formatReport(result.Path, result.Report))
				app.printf("  Quality:    %s\n", ScoreStyle.Render(fmt.Sprintf("%.1f/10", result.QualityScore)))
				app.printf("  Overall:    %s\n", ScoreStyle.Render(result.FormatScore()))
				app.printf("  Standard:   %.1f  %s\n", result.Standard,
					verdict(result.MeetsStandard, "MET", "NOT MET"))
				app.printf("  Assessment: %s\n", DimStyle.Render(result.ID))
			}

			if !result.MeetsStandard {
				return errBelowStandard
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the assessment as JSON")
	return cmd
}
