package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// --- Mock implementations for reindex testing ---

// fetchCall records one Fetch invocation.
type fetchCall struct {
	class  string
	limit  int
	offset int
	size   int
}

// mockFetcher serves count synthetic documents of one class.
type mockFetcher struct {
	class    string
	count    int
	fetchErr error
	calls    *[]fetchCall
}

func (m *mockFetcher) Class() string { return m.class }

func (m *mockFetcher) TotalDocuments(_ context.Context) (int, error) { return m.count, nil }

func (m *mockFetcher) Fetch(_ context.Context, limit, offset int) ([]domain.Document, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var docs []domain.Document
	for i := offset; i < offset+limit && i < m.count; i++ {
		docs = append(docs, domain.Document{
			ID:          domain.DocumentID(m.class, int64(i+1)),
			RecordID:    int64(i + 1),
			SourceClass: m.class,
			Data:        map[string]any{"title": fmt.Sprintf("%s %d", m.class, i+1)},
		})
	}
	if m.calls != nil {
		*m.calls = append(*m.calls, fetchCall{class: m.class, limit: limit, offset: offset, size: len(docs)})
	}
	return docs, nil
}

// mockRegistry implements driven.FetcherRegistry from fixed counts.
type mockRegistry struct {
	counts   map[string]int
	fetchErr error
	calls    []fetchCall
	untils   []time.Time
	missing  map[string]bool
}

func newMockRegistry(counts map[string]int) *mockRegistry {
	return &mockRegistry{counts: counts, missing: map[string]bool{}}
}

func (m *mockRegistry) Fetcher(_ context.Context, class string, until time.Time) (driven.DocumentFetcher, error) {
	count, ok := m.counts[class]
	if !ok || m.missing[class] {
		return nil, nil
	}
	m.untils = append(m.untils, until)
	return &mockFetcher{class: class, count: count, fetchErr: m.fetchErr, calls: &m.calls}, nil
}

// mockIndexingService records pushed documents.
type mockIndexingService struct {
	mu           sync.Mutex
	added        []domain.Document
	removed      []domain.Document
	addCalls     int
	addErr       error
	configureErr error
	configured   int
}

func (m *mockIndexingService) AddDocuments(_ context.Context, docs []domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, docs...)
	return nil
}

func (m *mockIndexingService) RemoveDocuments(_ context.Context, docs []domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, docs...)
	return nil
}

func (m *mockIndexingService) Configure(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configured++
	return m.configureErr
}

// mockStage records stage switches.
type mockStage struct {
	stages []domain.Stage
	err    error
}

func (m *mockStage) UseStage(_ context.Context, stage domain.Stage) error {
	m.stages = append(m.stages, stage)
	return m.err
}

var (
	_ driven.FetcherRegistry = (*mockRegistry)(nil)
	_ driven.IndexingService = (*mockIndexingService)(nil)
	_ driven.StageSwitcher   = (*mockStage)(nil)
)

func pagesConfiguration(batchSize int) *IndexConfiguration {
	settings := domain.DefaultSearchSettings()
	settings.BatchSize = batchSize
	return NewIndexConfiguration(domain.SearchConfig{
		Settings: settings,
		Indexes: []domain.IndexDefinition{{
			Name: "pages",
			IncludeClasses: []domain.ClassInclusion{
				{Class: "Page", Spec: &domain.ClassSpec{Fields: []domain.FieldInclusion{
					{Name: "title", Spec: &domain.FieldSpec{}},
					{Name: "content", Spec: &domain.FieldSpec{Property: "Content"}},
				}}},
				include("File", "name"),
				include("BlogPost", "author"),
			},
		}},
	}, testHierarchy)
}

func intPtr(v int) *int { return &v }

// ==================== ReindexJob Tests ====================

func TestNewReindexJob_InvalidBatchSize(t *testing.T) {
	cfg := pagesConfiguration(100)
	for _, size := range []int{0, -1} {
		job, err := NewReindexJob(cfg, newMockRegistry(nil), nil, &mockIndexingService{}, nil, intPtr(size))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, job)
	}
}

func TestNewReindexJob_DefaultBatchSize(t *testing.T) {
	job, err := NewReindexJob(pagesConfiguration(42), newMockRegistry(nil), nil, &mockIndexingService{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, job.BatchSize())
}

func TestReindexJob_Title(t *testing.T) {
	cfg := pagesConfiguration(100)
	job, err := NewReindexJob(cfg, newMockRegistry(nil), nil, &mockIndexingService{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Search service reindex all documents", job.Title())

	job, err = NewReindexJob(cfg, newMockRegistry(nil), nil, &mockIndexingService{}, []string{"Page", "File"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Search service reindex all documents of class Page,File", job.Title())
}

func TestReindexJob_Setup_PlansSteps(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 250, "File": 100})
	stage := &mockStage{}
	job, err := NewReindexJob(pagesConfiguration(100), registry, stage, &mockIndexingService{}, nil, nil)
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	state, err := job.Setup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Stage{domain.StageLive}, stage.stages)
	assert.Equal(t, now.Add(-5*time.Minute), state.Until)
	// BlogPost is a subclass of Page and is not planned separately.
	require.Len(t, state.Fetchers, 2)
	assert.Equal(t, "Page", state.Fetchers[0].Class)
	assert.Equal(t, "File", state.Fetchers[1].Class)
	assert.Equal(t, 4, state.TotalSteps)
	assert.False(t, state.IsComplete)
	assert.Equal(t, 0, state.CurrentStep)
	assert.Equal(t, 0, state.FetchIndex)
	assert.Equal(t, 0, state.FetchOffset)
	assert.Equal(t, domain.JobRunning, state.Status)
	for _, u := range registry.untils {
		assert.Equal(t, state.Until, u)
	}
}

func TestReindexJob_Setup_TotalStepsProperty(t *testing.T) {
	tests := []struct {
		batch  int
		counts map[string]int
		want   int
	}{
		{1, map[string]int{"Page": 3, "File": 2}, 5},
		{7, map[string]int{"Page": 7, "File": 8}, 3},
		{100, map[string]int{"Page": 0, "File": 0}, 0},
		{3, map[string]int{"Page": 1}, 1},
		{1000, map[string]int{"Page": 999, "File": 1001}, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("batch=%d", tt.batch), func(t *testing.T) {
			job, err := NewReindexJob(pagesConfiguration(100), newMockRegistry(tt.counts), nil,
				&mockIndexingService{}, nil, intPtr(tt.batch))
			require.NoError(t, err)

			state, err := job.Setup(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, state.TotalSteps)
			assert.Equal(t, tt.want == 0, state.IsComplete)
		})
	}
}

func TestReindexJob_Setup_SkipsAbsentFetchers(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 10})
	job, err := NewReindexJob(pagesConfiguration(100), registry, nil, &mockIndexingService{}, nil, nil)
	require.NoError(t, err)

	state, err := job.Setup(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Fetchers, 1)
	assert.Equal(t, 1, state.TotalSteps)
}

func TestReindexJob_Setup_OnlyClasses(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 10, "File": 10, "BlogPost": 3})
	job, err := NewReindexJob(pagesConfiguration(100), registry, nil, &mockIndexingService{}, []string{"BlogPost"}, nil)
	require.NoError(t, err)

	state, err := job.Setup(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Fetchers, 1)
	assert.Equal(t, "BlogPost", state.Fetchers[0].Class)
	assert.Equal(t, []string{"BlogPost"}, state.OnlyClasses)
}

func TestReindexJob_Setup_NothingToDo(t *testing.T) {
	job, err := NewReindexJob(pagesConfiguration(100), newMockRegistry(nil), nil, &mockIndexingService{}, nil, nil)
	require.NoError(t, err)

	state, err := job.Setup(context.Background())
	require.NoError(t, err)
	assert.True(t, state.IsComplete)
	assert.Equal(t, 0, state.TotalSteps)
	assert.Equal(t, domain.JobComplete, state.Status)
}

func TestReindexJob_Setup_StageError(t *testing.T) {
	stage := &mockStage{err: errors.New("no db")}
	job, err := NewReindexJob(pagesConfiguration(100), newMockRegistry(nil), stage, &mockIndexingService{}, nil, nil)
	require.NoError(t, err)

	_, err = job.Setup(context.Background())
	assert.Error(t, err)
}

func TestReindexJob_Setup_Replans(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 250})
	job, err := NewReindexJob(pagesConfiguration(100), registry, nil, &mockIndexingService{}, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	state, err := job.Setup(ctx)
	require.NoError(t, err)
	state, err = job.Process(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentStep)

	registry.counts["Page"] = 50
	replanned, err := job.Setup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, replanned.CurrentStep)
	assert.Equal(t, 0, replanned.FetchOffset)
	assert.Equal(t, 1, replanned.TotalSteps)
}

func TestReindexJob_Process_PageExample(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 250})
	indexing := &mockIndexingService{}
	job, err := NewReindexJob(pagesConfiguration(100), registry, nil, indexing, []string{"Page"}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	state, err := job.Setup(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, state.TotalSteps)

	for i := 0; i < 3; i++ {
		state, err = job.Process(ctx, state)
		require.NoError(t, err)
	}

	assert.True(t, state.IsComplete)
	assert.Equal(t, 3, state.CurrentStep)
	assert.Equal(t, []fetchCall{
		{class: "Page", limit: 100, offset: 0, size: 100},
		{class: "Page", limit: 100, offset: 100, size: 100},
		{class: "Page", limit: 100, offset: 200, size: 50},
	}, registry.calls)
	assert.Len(t, indexing.added, 250)

	// Further calls are a safe no-op.
	again, err := job.Process(ctx, state)
	require.NoError(t, err)
	assert.True(t, again.IsComplete)
	assert.Equal(t, 3, again.CurrentStep)
	assert.Len(t, registry.calls, 3)
}

func TestReindexJob_Process_PartitionsEachFetcher(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 7, "File": 3})
	indexing := &mockIndexingService{}
	job, err := NewReindexJob(pagesConfiguration(100), registry, nil, indexing, []string{"Page", "File"}, intPtr(3))
	require.NoError(t, err)
	ctx := context.Background()

	state, err := job.Setup(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, state.TotalSteps)

	steps := 0
	for !state.IsComplete {
		state, err = job.Process(ctx, state)
		require.NoError(t, err)
		steps++
		require.LessOrEqual(t, steps, state.TotalSteps)
	}

	assert.Equal(t, 4, steps)
	assert.Equal(t, []fetchCall{
		{class: "Page", limit: 3, offset: 0, size: 3},
		{class: "Page", limit: 3, offset: 3, size: 3},
		{class: "Page", limit: 3, offset: 6, size: 1},
		{class: "File", limit: 3, offset: 0, size: 3},
	}, registry.calls)

	seen := map[string]bool{}
	for _, d := range indexing.added {
		assert.False(t, seen[d.ID], "duplicate %s", d.ID)
		seen[d.ID] = true
	}
	assert.Len(t, seen, 10)
}

func TestReindexJob_Process_SkipsEmptyFetchers(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 0, "File": 2})
	job, err := NewReindexJob(pagesConfiguration(100), registry, nil, &mockIndexingService{}, []string{"Page", "File"}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	state, err := job.Setup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, state.FetchIndex)

	state, err = job.Process(ctx, state)
	require.NoError(t, err)
	assert.True(t, state.IsComplete)
	assert.Equal(t, state.TotalSteps, state.CurrentStep)
}

func TestReindexJob_Process_DisablesDependencies(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 2})
	tracker := &mockTracker{deps: []domain.Document{{ID: "File_9", SourceClass: "File"}}}
	indexing := &mockIndexingService{}
	job, err := NewReindexJob(pagesConfiguration(100), registry, nil, indexing, []string{"Page"}, nil)
	require.NoError(t, err)
	job.SetDependencyTracker(tracker)
	ctx := context.Background()

	state, err := job.Setup(ctx)
	require.NoError(t, err)
	_, err = job.Process(ctx, state)
	require.NoError(t, err)

	assert.Equal(t, 0, tracker.calls)
	assert.Len(t, indexing.added, 2)
}

func TestReindexJob_Process_FailureLeavesCursor(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 250})
	indexing := &mockIndexingService{}
	job, err := NewReindexJob(pagesConfiguration(100), registry, nil, indexing, []string{"Page"}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	state, err := job.Setup(ctx)
	require.NoError(t, err)
	state, err = job.Process(ctx, state)
	require.NoError(t, err)

	indexing.addErr = errors.New("backend unavailable")
	failed, err := job.Process(ctx, state)
	require.Error(t, err)
	assert.Equal(t, state, failed)
	assert.Equal(t, 100, failed.FetchOffset)
	assert.Equal(t, 1, failed.CurrentStep)

	// Retrying the same batch after recovery continues from the same cursor.
	indexing.addErr = nil
	next, err := job.Process(ctx, failed)
	require.NoError(t, err)
	assert.Equal(t, 200, next.FetchOffset)
	assert.Equal(t, 2, next.CurrentStep)
}

func TestReindexJob_Process_FetchError(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 10})
	job, err := NewReindexJob(pagesConfiguration(100), registry, nil, &mockIndexingService{}, []string{"Page"}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	state, err := job.Setup(ctx)
	require.NoError(t, err)

	registry.fetchErr = errors.New("db timeout")
	_, err = job.Process(ctx, state)
	assert.ErrorIs(t, err, registry.fetchErr)
}

func TestReindexJob_Process_FetcherUnavailable(t *testing.T) {
	registry := newMockRegistry(map[string]int{"Page": 10})
	job, err := NewReindexJob(pagesConfiguration(100), registry, nil, &mockIndexingService{}, []string{"Page"}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	state, err := job.Setup(ctx)
	require.NoError(t, err)

	registry.missing["Page"] = true
	next, err := job.Process(ctx, state)
	assert.ErrorIs(t, err, domain.ErrFetcherUnavailable)
	assert.Equal(t, state, next)
}

func TestReindexJob_Process_EmptyState(t *testing.T) {
	job, err := NewReindexJob(pagesConfiguration(100), newMockRegistry(nil), nil, &mockIndexingService{}, nil, nil)
	require.NoError(t, err)

	state, err := job.Process(context.Background(), domain.ReindexState{})
	require.NoError(t, err)
	assert.True(t, state.IsComplete)
}
