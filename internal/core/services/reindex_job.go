package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
	"github.com/custodia-labs/searchsync/internal/logger"
)

// ReindexJob plans and executes a batched reindex. It holds no cursor of
// its own: Setup produces a ReindexState and Process maps one state to the
// next, so callers own persistence between steps.
type ReindexJob struct {
	config   *IndexConfiguration
	registry driven.FetcherRegistry
	stage    driven.StageSwitcher
	indexing driven.IndexingService
	tracker  driven.DependencyTracker
	cleaner  driven.Normaliser

	onlyClasses []string
	batchSize   int

	now func() time.Time
}

// NewReindexJob creates a job. A nil batchSize uses the configured batch
// size; an explicit value below 1 is rejected. The stage switcher and
// tracker may be nil.
func NewReindexJob(
	config *IndexConfiguration,
	registry driven.FetcherRegistry,
	stage driven.StageSwitcher,
	indexing driven.IndexingService,
	onlyClasses []string,
	batchSize *int,
) (*ReindexJob, error) {
	size := config.BatchSize()
	if batchSize != nil {
		if *batchSize < 1 {
			return nil, fmt.Errorf("%w: batch size must be greater than 0", domain.ErrInvalidInput)
		}
		size = *batchSize
	}
	return &ReindexJob{
		config:      config,
		registry:    registry,
		stage:       stage,
		indexing:    indexing,
		onlyClasses: append([]string(nil), onlyClasses...),
		batchSize:   size,
		now:         time.Now,
	}, nil
}

// SetDependencyTracker sets the tracker handed to each batch's indexer.
// Dependency expansion stays off for reindexing regardless.
func (j *ReindexJob) SetDependencyTracker(tracker driven.DependencyTracker) *ReindexJob {
	j.tracker = tracker
	return j
}

// SetNormaliser sets the normaliser handed to each batch's indexer.
func (j *ReindexJob) SetNormaliser(n driven.Normaliser) *ReindexJob {
	j.cleaner = n
	return j
}

// Title returns the human-readable label of the job.
func (j *ReindexJob) Title() string {
	return domain.ReindexTitle(j.onlyClasses)
}

// BatchSize returns the number of documents per step.
func (j *ReindexJob) BatchSize() int {
	return j.batchSize
}

// OnlyClasses returns the class restriction, if any.
func (j *ReindexJob) OnlyClasses() []string {
	return j.onlyClasses
}

// Setup computes a fresh plan. Calling it again discards any previous
// plan; nothing is carried over.
func (j *ReindexJob) Setup(ctx context.Context) (domain.ReindexState, error) {
	if j.stage != nil {
		if err := j.stage.UseStage(ctx, domain.StageLive); err != nil {
			return domain.ReindexState{}, fmt.Errorf("switch to live stage: %w", err)
		}
	}

	now := j.now()
	until := j.config.SyncCutoff(now)

	classes := j.onlyClasses
	if len(classes) == 0 {
		classes = j.config.SearchableBaseClasses()
	}

	state := domain.ReindexState{
		OnlyClasses: append([]string(nil), j.onlyClasses...),
		BatchSize:   j.batchSize,
		Until:       until,
		Fetchers:    []domain.FetcherRef{},
		Status:      domain.JobPlanning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, class := range classes {
		fetcher, err := j.registry.Fetcher(ctx, class, until)
		if err != nil {
			return domain.ReindexState{}, err
		}
		if fetcher == nil {
			logger.Debug("No fetcher for %s, skipping", class)
			continue
		}
		total, err := fetcher.TotalDocuments(ctx)
		if err != nil {
			return domain.ReindexState{}, fmt.Errorf("count %s documents: %w", class, err)
		}
		ref := domain.FetcherRef{Class: class, Until: until, TotalDocuments: total}
		state.Fetchers = append(state.Fetchers, ref)
		state.TotalSteps += ref.Steps(j.batchSize)
	}

	state.IsComplete = state.TotalSteps == 0
	state.Status = domain.JobRunning
	if state.IsComplete {
		state.Status = domain.JobComplete
	}
	skipEmptyFetchers(&state)
	logger.Info("Planned %d steps across %d fetchers", state.TotalSteps, len(state.Fetchers))
	return state, nil
}

// Process performs exactly one batch and returns the advanced state. On
// error the input state is returned unchanged. Processing a state with no
// fetcher under the cursor marks it complete.
func (j *ReindexJob) Process(ctx context.Context, state domain.ReindexState) (domain.ReindexState, error) {
	next := state.Clone()
	ref, ok := next.ActiveFetcher()
	if !ok {
		next.IsComplete = true
		next.Status = domain.JobComplete
		return next, nil
	}

	batchSize := next.BatchSize
	if batchSize < 1 {
		batchSize = j.batchSize
	}

	fetcher, err := j.registry.Fetcher(ctx, ref.Class, ref.Until)
	if err != nil {
		return state, err
	}
	if fetcher == nil {
		return state, fmt.Errorf("%w: %s", domain.ErrFetcherUnavailable, ref.Class)
	}

	docs, err := fetcher.Fetch(ctx, batchSize, next.FetchOffset)
	if err != nil {
		return state, fmt.Errorf("fetch %s at offset %d: %w", ref.Class, next.FetchOffset, err)
	}
	logger.Debug("Fetched %d %s documents at offset %d", len(docs), ref.Class, next.FetchOffset)

	indexer := NewIndexer(j.config, j.indexing, j.tracker, docs, domain.MethodAdd, batchSize)
	indexer.SetProcessDependencies(false).SetNormaliser(j.cleaner)
	if err := indexer.Run(ctx); err != nil {
		return state, err
	}

	nextOffset := next.FetchOffset + batchSize
	if nextOffset >= ref.TotalDocuments {
		next.FetchIndex++
		next.FetchOffset = 0
	} else {
		next.FetchOffset = nextOffset
	}
	next.CurrentStep++
	next.LastError = ""
	next.UpdatedAt = j.now()
	skipEmptyFetchers(&next)
	if next.FetchIndex >= len(next.Fetchers) {
		next.IsComplete = true
		next.Status = domain.JobComplete
	}
	return next, nil
}

// skipEmptyFetchers moves the cursor past fetchers with nothing to fetch,
// so it never rests on a fetcher whose offset would be out of range.
func skipEmptyFetchers(state *domain.ReindexState) {
	for state.FetchOffset == 0 && state.FetchIndex < len(state.Fetchers) &&
		state.Fetchers[state.FetchIndex].TotalDocuments <= 0 {
		state.FetchIndex++
	}
}
