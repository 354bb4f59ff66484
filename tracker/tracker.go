// Package tracker maintains the blueprint-authoring task catalogue and its
// persisted completion state.
//
// The catalogue is immutable. Status is derived by joining it with the
// progress file at load time; every mutation rewrites the whole file.
package tracker

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"time"
)

// ErrTaskNotFound is returned for ids outside the catalogue.
var ErrTaskNotFound = errors.New("task not found")

// DefaultQualityScore is recorded when completion is marked without a score.
const DefaultQualityScore = "10/10"

// Tracker joins the task catalogue with persisted progress. Not safe for
// concurrent use.
type Tracker struct {
	path   string
	tasks  []Task
	index  map[string]int
	logger *slog.Logger
	now    func() time.Time

	progress *progressFile
	status   map[string]Status
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New creates a tracker over tasks persisted at path and loads existing
// progress.
func New(path string, tasks []Task, logger *slog.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		path:   path,
		tasks:  append([]Task(nil), tasks...),
		index:  make(map[string]int, len(tasks)),
		logger: logger,
		now:    time.Now,
	}
	for i, task := range t.tasks {
		t.index[task.BlueprintID] = i
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Load()
	return t
}

// Path returns the progress file path.
func (t *Tracker) Path() string {
	return t.path
}

// Load re-reads the progress file. A missing or corrupt file yields empty
// progress.
func (t *Tracker) Load() {
	p, err := readProgress(t.path)
	switch {
	case err == nil:
		t.logger.Debug("Loaded progress",
			"path", t.path,
			"completed", len(p.CompletedTasks),
			"failed", len(p.FailedTasks))
	case errors.Is(err, fs.ErrNotExist):
		t.logger.Debug("No existing progress, starting fresh", "path", t.path)
		p = emptyProgress()
	default:
		t.logger.Warn("Ignoring unreadable progress file", "path", t.path, "error", err)
		p = emptyProgress()
	}
	t.progress = p
	t.rebuild()
}

// rebuild derives the status map from the progress lists.
func (t *Tracker) rebuild() {
	status := make(map[string]Status, len(t.tasks))
	for _, task := range t.tasks {
		status[task.BlueprintID] = Status{State: StatePending}
	}

	for _, f := range t.progress.FailedTasks {
		if _, ok := t.index[f.TaskID]; ok {
			status[f.TaskID] = Status{State: StateFailed, Detail: f.Error, At: parseTime(f.FailedAt)}
		}
	}

	completed := make(map[string]Status, len(t.progress.CompletedTasks))
	for _, id := range t.progress.CompletedTasks {
		completed[id] = Status{State: StateCompleted}
	}
	for _, s := range t.progress.QualityScores {
		if _, ok := completed[s.TaskID]; ok {
			completed[s.TaskID] = Status{State: StateCompleted, Detail: s.QualityScore, At: parseTime(s.CompletedAt)}
		}
	}
	for id, s := range completed {
		if _, ok := t.index[id]; ok {
			status[id] = s
		}
	}

	t.status = status
}

// Tasks returns the catalogue in order.
func (t *Tracker) Tasks() []Task {
	return append([]Task(nil), t.tasks...)
}

// Task looks up a task by blueprint id.
func (t *Tracker) Task(id string) (Task, error) {
	i, ok := t.index[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t.tasks[i], nil
}

// Status returns the derived status of a task.
func (t *Tracker) Status(id string) (Status, error) {
	if _, ok := t.index[id]; !ok {
		return Status{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t.status[id], nil
}

// ByPhase returns the tasks of one phase in catalogue order.
func (t *Tracker) ByPhase(phase Phase) []Task {
	return t.filter(func(task Task) bool { return task.Phase == phase })
}

// ByPriority returns the tasks of one priority in catalogue order.
func (t *Tracker) ByPriority(priority Priority) []Task {
	return t.filter(func(task Task) bool { return task.Priority == priority })
}

// Pending returns pending tasks in next-task order.
func (t *Tracker) Pending() []Task {
	pending := t.filter(func(task Task) bool {
		return t.status[task.BlueprintID].State == StatePending
	})
	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		return a.EstimatedHours < b.EstimatedHours
	})
	return pending
}

// NextTask returns the most urgent pending task, shortest estimate first
// within a priority. ok is false when nothing is pending.
func (t *Tracker) NextTask() (Task, bool) {
	pending := t.Pending()
	if len(pending) == 0 {
		return Task{}, false
	}
	return pending[0], true
}

func (t *Tracker) filter(keep func(Task) bool) []Task {
	var out []Task
	for _, task := range t.tasks {
		if keep(task) {
			out = append(out, task)
		}
	}
	return out
}

// MarkComplete records a task as completed with a quality score such as
// "9.5/10". Marking a task that is already terminal changes nothing.
func (t *Tracker) MarkComplete(id, score string) (Outcome, error) {
	if score == "" {
		score = DefaultQualityScore
	}
	return t.mark(id, StateCompleted, func(now string) func() {
		p := t.progress
		nCompleted, nScores := len(p.CompletedTasks), len(p.QualityScores)
		p.CompletedTasks = append(p.CompletedTasks, id)
		p.QualityScores = append(p.QualityScores, scoreRecord{TaskID: id, QualityScore: score, CompletedAt: now})
		return func() {
			p.CompletedTasks = p.CompletedTasks[:nCompleted]
			p.QualityScores = p.QualityScores[:nScores]
		}
	})
}

// MarkFailed records a task as failed with a reason. Marking a task that is
// already terminal changes nothing.
func (t *Tracker) MarkFailed(id, reason string) (Outcome, error) {
	return t.mark(id, StateFailed, func(now string) func() {
		p := t.progress
		n := len(p.FailedTasks)
		p.FailedTasks = append(p.FailedTasks, failureRecord{TaskID: id, Error: reason, FailedAt: now})
		return func() {
			p.FailedTasks = p.FailedTasks[:n]
		}
	})
}

// mark applies a transition. record appends to the progress lists and
// returns an undo used when persisting fails.
func (t *Tracker) mark(id string, target State, record func(now string) (undo func())) (Outcome, error) {
	task, err := t.Task(id)
	if err != nil {
		return Outcome{}, err
	}

	current := t.status[id]
	if !current.State.CanTransitionTo(target) {
		t.logger.Info("Task already terminal", "task", id, "state", current.State)
		return Outcome{Task: task, Changed: false, Status: current}, nil
	}

	now := t.now()
	lastUpdated := t.progress.LastUpdated
	undo := record(formatTime(now))
	t.progress.LastUpdated = formatTime(now)

	if err := writeProgress(t.path, t.progress); err != nil {
		undo()
		t.progress.LastUpdated = lastUpdated
		return Outcome{}, fmt.Errorf("save progress: %w", err)
	}

	t.rebuild()
	status := t.status[id]
	t.logger.Info("Task marked", "task", id, "state", status.State, "detail", status.Detail)
	return Outcome{Task: task, Changed: true, Status: status}, nil
}
