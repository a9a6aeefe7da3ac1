package driven

import (
	"context"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

// ReindexJobStore persists reindex job state between steps.
type ReindexJobStore interface {
	// Save creates or replaces the state keyed by JobID.
	Save(ctx context.Context, state domain.ReindexState) error

	// Get retrieves a job's state.
	// Returns domain.ErrNotFound if the job does not exist.
	Get(ctx context.Context, jobID string) (*domain.ReindexState, error)

	// List returns all jobs, most recently updated first.
	List(ctx context.Context) ([]domain.ReindexState, error)

	// Delete removes a job's state.
	Delete(ctx context.Context, jobID string) error
}
