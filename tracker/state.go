package tracker

import "time"

// State is the lifecycle state of a task.
type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// IsTerminal returns true for completed and failed.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo returns true if this state can move to target.
//
//	pending → completed
//	pending → failed
func (s State) CanTransitionTo(target State) bool {
	return s == StatePending && target.IsTerminal()
}

// Status is the derived state of one task. Detail carries the quality score
// for completed tasks and the reason for failed ones.
type Status struct {
	State  State     `json:"state"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at,omitempty"`
}

// Outcome reports the effect of a mark operation.
type Outcome struct {
	Task    Task
	Changed bool
	Status  Status
}
