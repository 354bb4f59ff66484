package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semblueprint/assess"
	"github.com/c360studio/semblueprint/tracker"
)

func taskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Track the blueprint authoring backlog",
		Long: `Task works through the catalogue of blueprints still to be written.
Progress is kept in tracker.progress_file; a task is pending until it is
marked complete or failed, and both marks are final.`,
	}

	cmd.AddCommand(
		taskNextCmd(app),
		taskListCmd(app),
		taskPlanCmd(app),
		taskProgressCmd(app),
		taskPromptCmd(app),
		taskCompleteCmd(app),
		taskFailCmd(app),
		taskMetricsCmd(app),
	)
	return cmd
}

func taskNextCmd(app *App) *cobra.Command {
	var withPrompt bool

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next pending task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.tracker()
			if err != nil {
				return err
			}
			task, ok := t.NextTask()
			if !ok {
				app.printf("%s\n", PassStyle.Render("All tasks are done."))
				return nil
			}
			if withPrompt {
				app.printf("%s\n", tracker.Prompt(task))
				return nil
			}
			app.printf("%s\n", formatTask(task, tracker.Status{State: tracker.StatePending}))
			app.printf("  %s %s\n", DimStyle.Render("file:"), task.BlueprintPath(app.cfg.Resolve(app.cfg.Blueprints.Root)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withPrompt, "prompt", false, "Print the authoring brief instead of the summary")
	return cmd
}

func taskListCmd(app *App) *cobra.Command {
	var (
		phase       string
		priority    string
		pendingOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogue tasks and their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.tracker()
			if err != nil {
				return err
			}

			var tasks []tracker.Task
			switch {
			case pendingOnly:
				tasks = t.Pending()
			case phase != "":
				p := tracker.Phase(strings.ToUpper(phase))
				if !isPhase(p) {
					return fmt.Errorf("unknown phase %q", phase)
				}
				tasks = t.ByPhase(p)
			default:
				tasks = t.Tasks()
			}

			if priority != "" {
				p := tracker.Priority(strings.ToUpper(priority))
				if !p.IsValid() {
					return fmt.Errorf("unknown priority %q", priority)
				}
				tasks = filterPriority(tasks, p)
			}

			for _, task := range tasks {
				status, _ := t.Status(task.BlueprintID)
				app.printf("%s\n", formatTask(task, status))
			}
			app.printf("%d task(s)\n", len(tasks))
			return nil
		},
	}

	cmd.Flags().StringVar(&phase, "phase", "", "Only tasks of a phase (CORE_API, INFRASTRUCTURE, SYSTEM_TOOLS)")
	cmd.Flags().StringVar(&priority, "priority", "", "Only tasks of a priority (HIGH, MEDIUM, LOW)")
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only pending tasks, in next-task order")
	return cmd
}

func isPhase(p tracker.Phase) bool {
	for _, known := range tracker.Phases {
		if p == known {
			return true
		}
	}
	return false
}

func filterPriority(tasks []tracker.Task, p tracker.Priority) []tracker.Task {
	var out []tracker.Task
	for _, task := range tasks {
		if task.Priority == p {
			out = append(out, task)
		}
	}
	return out
}

func formatTask(task tracker.Task, status tracker.Status) string {
	line := fmt.Sprintf("%-8s %-6s %-32s %4.1fh  %s",
		stateBadge(status.State), task.Priority, HeaderStyle.Render(task.BlueprintID), task.EstimatedHours, task.Name)
	if status.Detail != "" {
		line += " " + DimStyle.Render("("+status.Detail+")")
	}
	return line
}

func taskPlanCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the execution plan by phase and priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.tracker()
			if err != nil {
				return err
			}
			plan := t.Plan()
			if asJSON {
				return app.printJSON(plan)
			}

			for i, phase := range plan {
				app.printf("%s\n", HeaderStyle.Render(fmt.Sprintf("Phase %d: %s (%d tasks, %.1fh)",
					i+1, phase.Phase.Title(), phase.Tasks, phase.Hours)))
				for _, p := range tracker.Priorities {
					tasks := phase.ByPriority[p]
					if len(tasks) == 0 {
						continue
					}
					app.printf("  %s\n", p)
					for _, task := range tasks {
						app.printf("    %-32s %4.1fh  %s\n", task.BlueprintID, task.EstimatedHours, DimStyle.Render(task.Location))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	return cmd
}

func taskProgressCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show the progress report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.tracker()
			if err != nil {
				return err
			}
			r := t.Progress()
			if asJSON {
				return app.printJSON(r)
			}

			app.printf("%s\n", HeaderStyle.Render("Blueprint progress"))
			app.printf("  Tasks:     %d/%d complete, %d failed, %d remaining\n",
				r.Completed, r.TotalTasks, r.Failed, r.Remaining)
			app.printf("  Progress:  %s %.1f%%\n", bar(r.ProgressPercentage/10), r.ProgressPercentage)
			app.printf("  Hours:     %.1f/%.1f (%.1f%%)\n", r.CompletedHours, r.TotalHours, r.TimePercentage)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func taskPromptCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <id>",
		Short: "Print the authoring brief for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.tracker()
			if err != nil {
				return err
			}
			task, err := t.Task(args[0])
			if err != nil {
				return err
			}
			app.printf("%s\n", tracker.Prompt(task))
			return nil
		},
	}
}

func taskCompleteCmd(app *App) *cobra.Command {
	var runAssess bool

	cmd := &cobra.Command{
		Use:   "complete <id> [score]",
		Short: "Mark a task as completed",
		Long: `Complete marks a pending task as completed with a quality score such as
"9.5/10". With --assess the task's blueprint file is validated and scored
and the overall score is recorded; a blueprint failing validation is not
marked.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.tracker()
			if err != nil {
				return err
			}
			task, err := t.Task(args[0])
			if err != nil {
				return err
			}

			score := ""
			if len(args) == 2 {
				score = args[1]
			}

			if runAssess {
				result, err := assessTask(app, task)
				if err != nil {
					return err
				}
				score = result.FormatScore()
			}

			outcome, err := t.MarkComplete(task.BlueprintID, score)
			if err != nil {
				return err
			}
			printOutcome(app, outcome)
			if outcome.Changed {
				app.afterTaskChange(t)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&runAssess, "assess", false, "Assess the task's blueprint and record its score")
	return cmd
}

func assessTask(app *App, task tracker.Task) (*assess.Assessment, error) {
	assessor, err := app.assessor()
	if err != nil {
		return nil, err
	}
	path := task.BlueprintPath(app.cfg.Resolve(app.cfg.Blueprints.Root))
	result := assessor.AssessFile(path)
	app.printf("%s", formatReport(path, result.Report))
	if !result.Report.Passed() {
		return nil, fmt.Errorf("%w: %s", errValidationFailed, path)
	}
	if !result.MeetsStandard {
		app.logger.Warn("Blueprint below quality standard",
			"task", task.BlueprintID, "quality", result.QualityScore, "standard", result.Standard)
	}
	return result, nil
}

func taskFailCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fail <id> [reason...]",
		Short: "Mark a task as failed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.tracker()
			if err != nil {
				return err
			}
			reason := strings.Join(args[1:], " ")
			if reason == "" {
				reason = "unspecified"
			}
			outcome, err := t.MarkFailed(args[0], reason)
			if err != nil {
				return err
			}
			printOutcome(app, outcome)
			if outcome.Changed {
				app.afterTaskChange(t)
			}
			return nil
		},
	}
}

func printOutcome(app *App, o tracker.Outcome) {
	if !o.Changed {
		app.printf("%s %s is already %s\n", DimStyle.Render("unchanged:"), o.Task.BlueprintID, o.Status.State)
		return
	}
	app.printf("%s %s", stateBadge(o.Status.State), o.Task.BlueprintID)
	if o.Status.Detail != "" {
		app.printf(" (%s)", o.Status.Detail)
	}
	app.printf("\n")
}

func taskMetricsCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Write task progress gauges in Prometheus text format",
		Long: `Metrics writes the tracker gauges to a node_exporter textfile. The path
defaults to tracker.metrics_file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				outPath = app.cfg.Resolve(app.cfg.Tracker.MetricsFile)
			}
			if outPath == "" {
				return errors.New("no output path: pass --out or set tracker.metrics_file")
			}
			t, err := app.tracker()
			if err != nil {
				return err
			}
			if err := t.WriteMetrics(outPath); err != nil {
				return err
			}
			app.printf("Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Metrics file path")
	return cmd
}
