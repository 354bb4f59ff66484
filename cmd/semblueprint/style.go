package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/c360studio/semblueprint/tracker"
	"github.com/c360studio/semblueprint/validation"
)

var (
	HeaderStyle  lipgloss.Style
	PassStyle    lipgloss.Style
	WarnStyle    lipgloss.Style
	FailStyle    lipgloss.Style
	DimStyle     lipgloss.Style
	ScoreStyle   lipgloss.Style
	PendingStyle lipgloss.Style
)

func init() {
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	PassStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	WarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	FailStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	DimStyle = lipgloss.NewStyle().Faint(true)
	ScoreStyle = lipgloss.NewStyle().Bold(true)
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
}

func levelBadge(level validation.Level) string {
	switch level {
	case validation.LevelPass:
		return PassStyle.Render("PASS")
	case validation.LevelWarning:
		return WarnStyle.Render("WARN")
	default:
		return FailStyle.Render("FAIL")
	}
}

func stateBadge(state tracker.State) string {
	switch state {
	case tracker.StateCompleted:
		return PassStyle.Render("done")
	case tracker.StateFailed:
		return FailStyle.Render("failed")
	default:
		return PendingStyle.Render("pending")
	}
}

func verdict(ok bool, yes, no string) string {
	if ok {
		return PassStyle.Render(yes)
	}
	return FailStyle.Render(no)
}

// bar renders a 0-10 score as a fixed-width gauge.
func bar(score float64) string {
	const width = 10
	filled := int(score + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return PassStyle.Render(strings.Repeat("█", filled)) + DimStyle.Render(strings.Repeat("░", width-filled))
}

func formatReport(path string, r *validation.Report) string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render(r.BlueprintID))
	if path != "" {
		sb.WriteString(" " + DimStyle.Render(path))
	}
	sb.WriteString("\n")
	for _, c := range r.Checks {
		sb.WriteString(fmt.Sprintf("  %s %s: %s\n", levelBadge(c.Level), c.Name, c.Message))
	}
	sb.WriteString(fmt.Sprintf("  Score: %s  %s  (%d/%d passed)\n",
		ScoreStyle.Render(fmt.Sprintf("%.1f/10", r.Score)),
		verdict(r.Passed(), "PASSED", "FAILED"),
		r.PassCount(), len(r.Checks)))
	return sb.String()
}
