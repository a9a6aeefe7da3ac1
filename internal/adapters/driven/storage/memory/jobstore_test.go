package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

func TestJobStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()

	state := domain.ReindexState{
		JobID:    "job-1",
		Fetchers: []domain.FetcherRef{{Class: "Page", TotalDocuments: 3}},
		Status:   domain.JobRunning,
	}
	require.NoError(t, store.Save(ctx, state))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobRunning, got.Status)
	assert.False(t, got.UpdatedAt.IsZero())

	// Returned state is a copy.
	got.Fetchers[0].Class = "Changed"
	again, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Page", again.Fetchers[0].Class)

	require.NoError(t, store.Delete(ctx, "job-1"))
	_, err = store.Get(ctx, "job-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStore_SaveRequiresID(t *testing.T) {
	err := NewJobStore().Save(context.Background(), domain.ReindexState{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestJobStore_ListMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()
	now := time.Now()

	require.NoError(t, store.Save(ctx, domain.ReindexState{JobID: "a", UpdatedAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.ReindexState{JobID: "b", UpdatedAt: now}))
	require.NoError(t, store.Save(ctx, domain.ReindexState{JobID: "c", UpdatedAt: now.Add(-2 * time.Hour)}))

	jobs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "b", jobs[0].JobID)
	assert.Equal(t, "a", jobs[1].JobID)
	assert.Equal(t, "c", jobs[2].JobID)
}
