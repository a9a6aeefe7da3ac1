package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
	"github.com/custodia-labs/searchsync/internal/logger"
)

// historyRetention is the number of results kept per task.
const historyRetention = 100

// Scheduler manages background task execution.
// It is a pure core service with no external control API.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	reindex driving.ReindexService
	tick    time.Duration

	mu       sync.Mutex
	running  bool
	inFlight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	reindex driving.ReindexService,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		reindex:  reindex,
		tick:     time.Minute,
		inFlight: make(map[string]bool),
	}
}

// SetTick overrides how often due tasks are checked.
func (s *Scheduler) SetTick(d time.Duration) {
	if d > 0 {
		s.tick = d
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Initialise tasks in store
	if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: failed to initialise tasks: %v", err)
	}

	// Run the main scheduler loop
	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler. It always waits for in-flight
// tasks, even when the loop already ended through its context.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.wg.Wait()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDIncrementalReindex); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDIncrementalReindex, "Incremental Reindex", taskCfg); err != nil {
			return err
		}
	}

	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		// Create new task
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		// Update interval if changed
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			// Recalculate next run from now
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			s.wg.Wait()
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask executes a single task.
// A task still running from an earlier tick is skipped.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.inFlight[task.ID] {
		s.mu.Unlock()
		logger.Debug("scheduler: %s still running, skipping", task.ID)
		return
	}
	s.inFlight[task.ID] = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, task.ID)
			s.mu.Unlock()
		}()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDIncrementalReindex:
			result.ItemsProcessed, err = s.runIncrementalReindex(ctx)
		default:
			logger.Error("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		result.Success = err == nil
		if err != nil {
			result.Error = err.Error()
		}
		task.Finish(result.StartedAt, result.EndedAt, err)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Error("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}

		// Record result for history
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Error("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}

		if pruneErr := s.store.PruneHistory(ctx, historyRetention); pruneErr != nil {
			logger.Error("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runIncrementalReindex continues an interrupted reindex or starts a new
// pass over stale documents, and returns the number of batches processed.
func (s *Scheduler) runIncrementalReindex(ctx context.Context) (int, error) {
	if s.reindex == nil {
		return 0, nil
	}
	state, err := s.resumeInterrupted(ctx)
	if state == nil && err == nil {
		state, err = s.reindex.Start(ctx, driving.ReindexOptions{})
	}
	switch {
	case errors.Is(err, domain.ErrIndexingDisabled):
		logger.Debug("scheduler: indexing disabled, skipping reindex")
		return 0, nil
	case errors.Is(err, domain.ErrJobInProgress):
		logger.Debug("scheduler: reindex already running, skipping")
		return 0, nil
	}
	if state == nil {
		return 0, err
	}
	return state.CurrentStep, err
}

// resumeInterrupted resumes the newest job if it covers every class and
// stopped on an error. It returns nil, nil when there is nothing to resume.
func (s *Scheduler) resumeInterrupted(ctx context.Context) (*domain.ReindexState, error) {
	jobs, err := s.reindex.List(ctx)
	if err != nil {
		logger.Warn("scheduler: cannot list reindex jobs: %v", err)
		return nil, nil
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	last := jobs[0]
	if last.IsComplete || last.LastError == "" || len(last.OnlyClasses) > 0 {
		return nil, nil
	}
	logger.Info("scheduler: resuming interrupted reindex %s at step %d/%d", last.JobID, last.CurrentStep, last.TotalSteps)
	return s.reindex.Resume(ctx, last.JobID)
}
