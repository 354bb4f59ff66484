package tracker

import (
	"fmt"
	"strings"
)

// Prompt renders the authoring brief for a task.
func Prompt(task Task) string {
	return fmt.Sprintf(`## Task: Create %s

**Parameters**:
- Blueprint Type: %s
- Component Layer: %s
- Resource Name: %s
- Model Name: %s
- Target Quality: 10/10 production ready

**Blueprint Details**:
- Purpose: %s
- Features: %s
- Location: %s
- Estimated Time: %g hours
- Priority: %s
- Phase: %s

**Execution Steps**:

1. **Blueprint creation**
   - Create the blueprint with the embedded-template strategy
   - Include logging, auth, rate limiting and OpenAPI parameters
   - Run: semblueprint validate %s
   - All checks must pass with no FAIL results

2. **Generation test**
   - Render with sample parameters: semblueprint extract %s --check
   - All template variables must be substituted

3. **Quality review**
   - Run: semblueprint score %s
   - Each of the five categories should reach 10/10

4. **Certification**
   - Run: semblueprint assess %s
   - The assessment must meet the quality standard

**Quality Gates**:
- Gate 1: structural validation passes
- Gate 2: generated code scores at least 9.5/10
- Gate 3: all quality categories reach 10/10
- Gate 4: assessment meets the standard

**Deliverables**:
- Blueprint JSON file: %s%s.json
- Generated code sample
- Assessment report

When done: semblueprint task complete %s --assess
`,
		task.Name,
		task.BlueprintID,
		task.ComponentLayer,
		task.ResourceName,
		task.ModelName,
		task.Purpose,
		strings.Join(task.Features, ", "),
		task.Location,
		task.EstimatedHours,
		task.Priority,
		task.Phase,
		task.BlueprintID,
		task.BlueprintID,
		task.BlueprintID,
		task.BlueprintID,
		task.Location, task.BlueprintID,
		task.BlueprintID,
	)
}
