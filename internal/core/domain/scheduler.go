package domain

import "time"

// TaskIDIncrementalReindex is the built-in task that reindexes stale records.
const TaskIDIncrementalReindex = "incremental-reindex"

// ScheduledTask is a recurring background task and its run bookkeeping.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time

	// LastError is empty after a successful run.
	LastError string
}

// Due reports whether an enabled task should run at now. A task that has
// never been scheduled is always due.
func (t ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// Finish records the outcome of a run that started at start and ended at end,
// and schedules the next run one interval after end.
func (t *ScheduledTask) Finish(start, end time.Time, err error) {
	t.LastRun = start
	t.NextRun = end.Add(t.Interval)
	if err != nil {
		t.LastError = err.Error()
		return
	}
	t.LastError = ""
	t.LastSuccess = end
}

// TaskResult is one execution of a task, kept as history.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed counts reindex steps completed by the run.
	ItemsProcessed int
}

// SchedulerConfig switches the scheduler and its tasks on and off.
type SchedulerConfig struct {
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// TaskConfig configures one task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the zero TaskConfig for unknown tasks.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig runs the incremental reindex every five minutes,
// matching the default sync interval.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDIncrementalReindex: {Enabled: true, Interval: 5 * time.Minute},
		},
	}
}
