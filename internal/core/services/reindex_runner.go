package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
	"github.com/custodia-labs/searchsync/internal/logger"
)

// Ensure ReindexRunner implements the interface.
var _ driving.ReindexService = (*ReindexRunner)(nil)

// ReindexRunner executes reindex jobs step by step, persisting the state
// after every step so an interrupted job resumes where it stopped.
type ReindexRunner struct {
	config   *IndexConfiguration
	registry driven.FetcherRegistry
	stage    driven.StageSwitcher
	indexing driven.IndexingService
	tracker  driven.DependencyTracker
	cleaner  driven.Normaliser
	store    driven.ReindexJobStore
	observer driving.ReindexObserver

	mu      sync.Mutex
	running map[string]bool
}

// NewReindexRunner creates a runner. The stage switcher and tracker may be nil.
func NewReindexRunner(
	config *IndexConfiguration,
	registry driven.FetcherRegistry,
	stage driven.StageSwitcher,
	indexing driven.IndexingService,
	tracker driven.DependencyTracker,
	store driven.ReindexJobStore,
) *ReindexRunner {
	return &ReindexRunner{
		config:   config,
		registry: registry,
		stage:    stage,
		indexing: indexing,
		tracker:  tracker,
		store:    store,
		running:  make(map[string]bool),
	}
}

// SetNormaliser sets the normaliser applied to documents of every job.
func (r *ReindexRunner) SetNormaliser(n driven.Normaliser) {
	r.cleaner = n
}

// SetObserver registers a callback for every state transition.
func (r *ReindexRunner) SetObserver(observer driving.ReindexObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = observer
}

// Start plans a new job and runs it to completion.
func (r *ReindexRunner) Start(ctx context.Context, opts driving.ReindexOptions) (*domain.ReindexState, error) {
	if !r.config.IsEnabled() {
		return nil, domain.ErrIndexingDisabled
	}
	job, err := r.newJob(opts.Classes, opts.BatchSize)
	if err != nil {
		return nil, err
	}

	logger.Section(job.Title())
	state, err := job.Setup(ctx)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	state.JobID = uuid.New().String()
	if !r.acquire(state.JobID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrJobInProgress, state.JobID)
	}
	defer r.release(state.JobID)

	if err := r.save(ctx, state); err != nil {
		return nil, err
	}
	return r.run(ctx, job, state)
}

// Enqueue validates options and persists a pending job without running it.
// Resume executes it later.
func (r *ReindexRunner) Enqueue(ctx context.Context, opts driving.ReindexOptions) (*domain.ReindexState, error) {
	if !r.config.IsEnabled() {
		return nil, domain.ErrIndexingDisabled
	}
	job, err := r.newJob(opts.Classes, opts.BatchSize)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	state := domain.ReindexState{
		JobID:       uuid.New().String(),
		OnlyClasses: job.OnlyClasses(),
		BatchSize:   job.BatchSize(),
		Status:      domain.JobPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.save(ctx, state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Resume continues a persisted job from its cursor. Pending jobs are
// planned first; complete jobs are returned as they are. The job lock is
// held from loading through the last step.
func (r *ReindexRunner) Resume(ctx context.Context, jobID string) (*domain.ReindexState, error) {
	if !r.config.IsEnabled() {
		return nil, domain.ErrIndexingDisabled
	}
	if !r.acquire(jobID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrJobInProgress, jobID)
	}
	defer r.release(jobID)

	stored, err := r.store.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}
	if stored.IsComplete {
		return stored, nil
	}

	batchSize := stored.BatchSize
	job, err := r.newJob(stored.OnlyClasses, &batchSize)
	if err != nil {
		return nil, err
	}

	state := *stored
	if state.Status == domain.JobPending {
		planned, err := job.Setup(ctx)
		if err != nil {
			return nil, fmt.Errorf("setup: %w", err)
		}
		planned.JobID = state.JobID
		planned.CreatedAt = state.CreatedAt
		state = planned
		if err := r.save(ctx, state); err != nil {
			return nil, err
		}
	} else if r.stage != nil {
		if err := r.stage.UseStage(ctx, domain.StageLive); err != nil {
			return nil, fmt.Errorf("switch to live stage: %w", err)
		}
	}

	logger.Section(job.Title())
	return r.run(ctx, job, state)
}

// Status returns the persisted state of a job.
func (r *ReindexRunner) Status(ctx context.Context, jobID string) (*domain.ReindexState, error) {
	return r.store.Get(ctx, jobID)
}

// List returns all known jobs, most recent first.
func (r *ReindexRunner) List(ctx context.Context) ([]domain.ReindexState, error) {
	return r.store.List(ctx)
}

func (r *ReindexRunner) newJob(classes []string, batchSize *int) (*ReindexJob, error) {
	job, err := NewReindexJob(r.config, r.registry, r.stage, r.indexing, classes, batchSize)
	if err != nil {
		return nil, err
	}
	return job.SetDependencyTracker(r.tracker).SetNormaliser(r.cleaner), nil
}

// run processes steps until the job completes, the context is cancelled,
// or a step fails. The persisted cursor only moves on success. Callers
// hold the job lock.
func (r *ReindexRunner) run(ctx context.Context, job *ReindexJob, state domain.ReindexState) (*domain.ReindexState, error) {
	r.notify(ctx, state)
	for !state.IsComplete {
		if err := ctx.Err(); err != nil {
			return &state, err
		}

		next, err := job.Process(ctx, state)
		if err != nil {
			state.LastError = err.Error()
			state.UpdatedAt = time.Now()
			if saveErr := r.save(ctx, state); saveErr != nil {
				err = errors.Join(err, saveErr)
			}
			r.notify(ctx, state)
			return &state, fmt.Errorf("reindex step %d/%d: %w", state.CurrentStep+1, state.TotalSteps, err)
		}

		state = next
		if err := r.save(ctx, state); err != nil {
			return &state, err
		}
		logger.Info("Step %d/%d complete", state.CurrentStep, state.TotalSteps)
		r.notify(ctx, state)
	}
	return &state, nil
}

func (r *ReindexRunner) save(ctx context.Context, state domain.ReindexState) error {
	if err := r.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save job state: %w", err)
	}
	return nil
}

// notify calls the runner observer and the observer carried by ctx.
func (r *ReindexRunner) notify(ctx context.Context, state domain.ReindexState) {
	r.mu.Lock()
	observer := r.observer
	r.mu.Unlock()
	if observer != nil {
		observer(state.Clone())
	}
	if observe := driving.ObserverFrom(ctx); observe != nil {
		observe(state.Clone())
	}
}

func (r *ReindexRunner) acquire(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running[jobID] {
		return false
	}
	r.running[jobID] = true
	return true
}

func (r *ReindexRunner) release(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, jobID)
}
