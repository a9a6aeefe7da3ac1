package driving

import (
	"context"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

// ReindexOptions configures a reindex run.
type ReindexOptions struct {
	// Classes restricts the run to these classes. Empty means all
	// searchable base classes.
	Classes []string

	// BatchSize overrides the configured batch size when non-nil.
	BatchSize *int
}

// ReindexObserver is notified after every state transition of a run.
type ReindexObserver func(state domain.ReindexState)

type observerKey struct{}

// WithObserver returns a context that carries a per-run observer.
func WithObserver(ctx context.Context, observer ReindexObserver) context.Context {
	return context.WithValue(ctx, observerKey{}, observer)
}

// ObserverFrom returns the observer carried by ctx, or nil.
func ObserverFrom(ctx context.Context) ReindexObserver {
	observer, _ := ctx.Value(observerKey{}).(ReindexObserver)
	return observer
}

// ReindexService runs resumable batch reindex jobs.
type ReindexService interface {
	// Start plans a new job and runs it to completion.
	// Returns the final state, or the last persisted state with an error.
	Start(ctx context.Context, opts ReindexOptions) (*domain.ReindexState, error)

	// Enqueue persists a pending job without running it.
	Enqueue(ctx context.Context, opts ReindexOptions) (*domain.ReindexState, error)

	// Resume continues a persisted job from its cursor.
	Resume(ctx context.Context, jobID string) (*domain.ReindexState, error)

	// Status returns the persisted state of a job.
	Status(ctx context.Context, jobID string) (*domain.ReindexState, error)

	// List returns all known jobs, most recent first.
	List(ctx context.Context) ([]domain.ReindexState, error)
}
