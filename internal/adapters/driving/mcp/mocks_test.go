package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
)

// mockReindexService is a mock implementation of driving.ReindexService.
type mockReindexService struct {
	mu       sync.Mutex
	jobs     []domain.ReindexState
	started  []driving.ReindexOptions
	enqueued []driving.ReindexOptions
	resumed  []string
	err      error
}

func (m *mockReindexService) Start(_ context.Context, opts driving.ReindexOptions) (*domain.ReindexState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, opts)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ReindexState{
		JobID:       "job-sync",
		OnlyClasses: opts.Classes,
		CurrentStep: 2,
		TotalSteps:  2,
		IsComplete:  true,
		Status:      domain.JobComplete,
	}, nil
}

func (m *mockReindexService) Enqueue(_ context.Context, opts driving.ReindexOptions) (*domain.ReindexState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, opts)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ReindexState{JobID: "job-queued", OnlyClasses: opts.Classes, Status: domain.JobPending}, nil
}

func (m *mockReindexService) Resume(_ context.Context, jobID string) (*domain.ReindexState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumed = append(m.resumed, jobID)
	return &domain.ReindexState{JobID: jobID, IsComplete: true, Status: domain.JobComplete}, nil
}

func (m *mockReindexService) Status(_ context.Context, jobID string) (*domain.ReindexState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.jobs {
		if m.jobs[i].JobID == jobID {
			state := m.jobs[i]
			return &state, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockReindexService) List(_ context.Context) ([]domain.ReindexState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs, m.err
}

// mockConfigureService is a mock implementation of driving.ConfigureService.
type mockConfigureService struct {
	calls int
	err   error
}

func (m *mockConfigureService) Configure(_ context.Context) error {
	m.calls++
	return m.err
}
