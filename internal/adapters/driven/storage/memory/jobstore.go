package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// Ensure JobStore implements the interface.
var _ driven.ReindexJobStore = (*JobStore)(nil)

// JobStore is an in-memory implementation of driven.ReindexJobStore.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.ReindexState
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]domain.ReindexState),
	}
}

// Save creates or replaces the state keyed by JobID.
func (s *JobStore) Save(_ context.Context, state domain.ReindexState) error {
	if state.JobID == "" {
		return fmt.Errorf("%w: job state has no id", domain.ErrInvalidInput)
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[state.JobID] = state.Clone()
	return nil
}

// Get retrieves a job's state.
func (s *JobStore) Get(_ context.Context, jobID string) (*domain.ReindexState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := state.Clone()
	return &clone, nil
}

// List returns all jobs, most recently updated first.
func (s *JobStore) List(_ context.Context) ([]domain.ReindexState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ReindexState, 0, len(s.jobs))
	for _, state := range s.jobs {
		out = append(out, state.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].JobID < out[j].JobID
	})
	return out, nil
}

// Delete removes a job's state.
func (s *JobStore) Delete(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
	return nil
}
