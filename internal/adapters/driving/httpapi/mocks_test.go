package httpapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
)

// mockReindexService implements driving.ReindexService for testing.
type mockReindexService struct {
	mu        sync.Mutex
	jobs      map[string]domain.ReindexState
	enqueued  []driving.ReindexOptions
	resumed   []string
	enqueueFn func(opts driving.ReindexOptions) error
	resumeErr error
	listErr   error
}

func newMockReindexService() *mockReindexService {
	return &mockReindexService{jobs: make(map[string]domain.ReindexState)}
}

func (m *mockReindexService) Start(_ context.Context, _ driving.ReindexOptions) (*domain.ReindexState, error) {
	return nil, fmt.Errorf("not used")
}

func (m *mockReindexService) Enqueue(_ context.Context, opts driving.ReindexOptions) (*domain.ReindexState, error) {
	if m.enqueueFn != nil {
		if err := m.enqueueFn(opts); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, opts)
	batch := 100
	if opts.BatchSize != nil {
		batch = *opts.BatchSize
	}
	state := domain.ReindexState{
		JobID:       fmt.Sprintf("job-%d", len(m.enqueued)),
		OnlyClasses: opts.Classes,
		BatchSize:   batch,
		Status:      domain.JobPending,
	}
	m.jobs[state.JobID] = state
	return &state, nil
}

func (m *mockReindexService) Resume(_ context.Context, jobID string) (*domain.ReindexState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumed = append(m.resumed, jobID)
	if m.resumeErr != nil {
		return nil, m.resumeErr
	}
	state := m.jobs[jobID]
	state.Status = domain.JobComplete
	state.IsComplete = true
	m.jobs[jobID] = state
	return &state, nil
}

func (m *mockReindexService) Status(_ context.Context, jobID string) (*domain.ReindexState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}

func (m *mockReindexService) List(_ context.Context) ([]domain.ReindexState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.ReindexState, 0, len(m.jobs))
	for _, s := range m.jobs {
		out = append(out, s)
	}
	return out, nil
}

// mockConfigureService implements driving.ConfigureService for testing.
type mockConfigureService struct {
	calls int
	err   error
}

func (m *mockConfigureService) Configure(_ context.Context) error {
	m.calls++
	return m.err
}
