package tracker

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Priority orders pending work.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Priorities lists priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank returns the sort rank of a priority; lower is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// IsValid returns true for a known priority.
func (p Priority) IsValid() bool {
	return p.Rank() < 3
}

// Phase groups tasks into delivery stages.
type Phase string

const (
	PhaseCoreAPI        Phase = "CORE_API"
	PhaseInfrastructure Phase = "INFRASTRUCTURE"
	PhaseSystemTools    Phase = "SYSTEM_TOOLS"
)

// Phases lists the phases in delivery order.
var Phases = []Phase{PhaseCoreAPI, PhaseInfrastructure, PhaseSystemTools}

// Title returns a display name, e.g. "Core Api".
func (p Phase) Title() string {
	words := strings.Split(strings.ToLower(string(p)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Task is one blueprint-authoring work item. Tasks are identified by the
// blueprint they produce.
type Task struct {
	BlueprintID    string   `yaml:"id" json:"blueprint_id"`
	Name           string   `yaml:"name" json:"name"`
	Location       string   `yaml:"location" json:"location"`
	Purpose        string   `yaml:"purpose" json:"purpose"`
	Features       []string `yaml:"features" json:"features"`
	ComponentLayer string   `yaml:"layer" json:"component_layer"`
	ResourceName   string   `yaml:"resource" json:"resource_name"`
	ModelName      string   `yaml:"model" json:"model_name"`
	Phase          Phase    `yaml:"phase" json:"phase"`
	Priority       Priority `yaml:"priority" json:"priority"`
	EstimatedHours float64  `yaml:"hours" json:"estimated_hours"`
}

// BlueprintPath is where the task's blueprint file lives under root.
func (t Task) BlueprintPath(root string) string {
	return filepath.Join(root, filepath.FromSlash(t.Location), t.BlueprintID+".json")
}

// ErrInvalidCatalogue is returned for malformed catalogue files.
var ErrInvalidCatalogue = errors.New("invalid task catalogue")

//go:embed catalogue.yaml
var defaultCatalogue []byte

type catalogueFile struct {
	Tasks []Task `yaml:"tasks"`
}

// Catalogue returns the built-in task catalogue. Each call returns a fresh
// copy.
func Catalogue() []Task {
	tasks, err := ParseCatalogue(defaultCatalogue)
	if err != nil {
		panic(fmt.Sprintf("built-in catalogue: %v", err))
	}
	return tasks
}

// LoadCatalogue reads a catalogue YAML file.
func LoadCatalogue(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	return ParseCatalogue(data)
}

// ParseCatalogue decodes and checks a catalogue document.
func ParseCatalogue(data []byte) ([]Task, error) {
	var f catalogueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalogue, err)
	}

	seen := make(map[string]bool, len(f.Tasks))
	for i, t := range f.Tasks {
		if t.BlueprintID == "" {
			return nil, fmt.Errorf("%w: task %d has no id", ErrInvalidCatalogue, i)
		}
		if seen[t.BlueprintID] {
			return nil, fmt.Errorf("%w: duplicate task %q", ErrInvalidCatalogue, t.BlueprintID)
		}
		seen[t.BlueprintID] = true
		if !t.Priority.IsValid() {
			return nil, fmt.Errorf("%w: task %q: unknown priority %q", ErrInvalidCatalogue, t.BlueprintID, t.Priority)
		}
		if t.EstimatedHours < 0 {
			return nil, fmt.Errorf("%w: task %q: negative estimate", ErrInvalidCatalogue, t.BlueprintID)
		}
	}
	return f.Tasks, nil
}
