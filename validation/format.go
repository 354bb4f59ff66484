package validation

import (
	"fmt"
	"strings"
)

// Format renders the report as a plain-text summary.
func (r *Report) Format() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Blueprint: %s\n", r.BlueprintID))
	sb.WriteString(fmt.Sprintf("Overall Score: %.1f/10\n", r.Score))
	if r.Passed() {
		sb.WriteString("Status: PASSED\n")
	} else {
		sb.WriteString("Status: FAILED\n")
	}

	if failures := r.Failures(); len(failures) > 0 {
		sb.WriteString(fmt.Sprintf("\nFailures (%d):\n", len(failures)))
		for _, f := range failures {
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", f.Name, f.Message))
		}
	}

	if warnings := r.Warnings(); len(warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\nWarnings (%d):\n", len(warnings)))
		for _, w := range warnings {
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", w.Name, w.Message))
		}
	}

	sb.WriteString(fmt.Sprintf("\nPassed Checks: %d/%d\n", r.PassCount(), len(r.Checks)))
	return sb.String()
}

// FormatFeedback formats failures and warnings as authoring feedback.
// Returns an empty string for a clean report.
func (r *Report) FormatFeedback() string {
	failures := r.Failures()
	warnings := r.Warnings()
	if len(failures) == 0 && len(warnings) == 0 {
		return ""
	}

	var sb strings.Builder
	if len(failures) > 0 {
		sb.WriteString("## Validation Failed\n\n")
		sb.WriteString("The blueprint violates required conventions.\n\n")
		sb.WriteString("### Failed Checks\n\n")
		for _, f := range failures {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", f.Name, f.Message))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("## Validation Passed With Warnings\n\n")
	}

	if len(warnings) > 0 {
		sb.WriteString("### Warnings\n\n")
		for _, w := range warnings {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", w.Name, w.Message))
		}
		sb.WriteString("\n")
	}

	if len(failures) > 0 {
		sb.WriteString("Please update the blueprint addressing these issues.\n")
	}
	return sb.String()
}
