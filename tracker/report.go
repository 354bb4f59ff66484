package tracker

// Report summarizes catalogue progress.
type Report struct {
	TotalTasks         int     `json:"total_tasks"`
	Completed          int     `json:"completed"`
	Failed             int     `json:"failed"`
	Remaining          int     `json:"remaining"`
	ProgressPercentage float64 `json:"progress_percentage"`
	CompletedHours     float64 `json:"completed_hours"`
	TotalHours         float64 `json:"total_hours"`
	TimePercentage     float64 `json:"time_percentage"`
}

// Progress computes the current progress report.
func (t *Tracker) Progress() Report {
	var r Report
	r.TotalTasks = len(t.tasks)
	for _, task := range t.tasks {
		r.TotalHours += task.EstimatedHours
		switch t.status[task.BlueprintID].State {
		case StateCompleted:
			r.Completed++
			r.CompletedHours += task.EstimatedHours
		case StateFailed:
			r.Failed++
		}
	}
	r.Remaining = r.TotalTasks - r.Completed - r.Failed
	if r.TotalTasks > 0 {
		r.ProgressPercentage = float64(r.Completed) / float64(r.TotalTasks) * 100
	}
	if r.TotalHours > 0 {
		r.TimePercentage = r.CompletedHours / r.TotalHours * 100
	}
	return r
}

// PhasePlan groups one phase's tasks by priority.
type PhasePlan struct {
	Phase      Phase               `json:"phase"`
	Tasks      int                 `json:"tasks"`
	Hours      float64             `json:"estimated_hours"`
	ByPriority map[Priority][]Task `json:"by_priority"`
}

// Plan returns the execution plan: phases in delivery order with their
// tasks grouped by priority.
func (t *Tracker) Plan() []PhasePlan {
	plans := make([]PhasePlan, 0, len(Phases))
	for _, phase := range Phases {
		tasks := t.ByPhase(phase)
		plan := PhasePlan{
			Phase:      phase,
			Tasks:      len(tasks),
			ByPriority: make(map[Priority][]Task),
		}
		for _, task := range tasks {
			plan.Hours += task.EstimatedHours
			plan.ByPriority[task.Priority] = append(plan.ByPriority[task.Priority], task)
		}
		plans = append(plans, plan)
	}
	return plans
}
