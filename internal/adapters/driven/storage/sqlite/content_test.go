package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

// familyHierarchy is a fixed lineage for fetcher tests.
type familyHierarchy map[string][]string

func (h familyHierarchy) Ancestry(class string) []string { return []string{class} }

func (h familyHierarchy) Subclasses(class string) []string { return h[class] }

var pageFamily = familyHierarchy{"Page": {"BlogPost"}}

func record(class string, id int64, stage domain.Stage, edited time.Time) domain.Document {
	return domain.Document{
		SourceClass: class,
		RecordID:    id,
		Stage:       stage,
		LastEdited:  edited,
		Data:        map[string]any{"title": class},
	}
}

func TestContentStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	content := setupTestStore(t).ContentStore(pageFamily)
	edited := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, content.SaveRecord(ctx, record("Page", 7, domain.StageLive, edited)))

	got, err := content.GetRecord(ctx, "Page", 7, domain.StageLive)
	require.NoError(t, err)
	assert.Equal(t, "Page_7", got.ID)
	assert.Equal(t, domain.StageLive, got.Stage)
	assert.True(t, edited.Equal(got.LastEdited))
	assert.Equal(t, "Page", got.Data["title"])

	_, err = content.GetRecord(ctx, "Page", 7, domain.StageDraft)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Upsert keeps a single row.
	updated := record("Page", 7, domain.StageLive, edited.Add(time.Hour))
	updated.Data = map[string]any{"title": "Renamed"}
	require.NoError(t, content.SaveRecord(ctx, updated))
	got, err = content.GetRecord(ctx, "Page", 7, domain.StageLive)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Data["title"])

	require.NoError(t, content.DeleteRecord(ctx, "Page", 7, domain.StageLive))
	_, err = content.GetRecord(ctx, "Page", 7, domain.StageLive)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContentStore_SaveRecord_Defaults(t *testing.T) {
	ctx := context.Background()
	content := setupTestStore(t).ContentStore(nil)

	require.NoError(t, content.SaveRecord(ctx, domain.Document{SourceClass: "File", RecordID: 1}))

	got, err := content.GetRecord(ctx, "File", 1, domain.StageLive)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), got.LastEdited, time.Minute)
	assert.Empty(t, got.Data)
}

func TestContentStore_SaveRecord_Invalid(t *testing.T) {
	ctx := context.Background()
	content := setupTestStore(t).ContentStore(nil)

	assert.ErrorIs(t, content.SaveRecord(ctx, domain.Document{RecordID: 1}), domain.ErrInvalidInput)
	assert.ErrorIs(t, content.SaveRecord(ctx, domain.Document{SourceClass: "Page", Stage: "archive"}), domain.ErrInvalidInput)
}

func TestContentStore_UseStage(t *testing.T) {
	ctx := context.Background()
	content := setupTestStore(t).ContentStore(nil)

	assert.Equal(t, domain.StageLive, content.Stage())
	require.NoError(t, content.UseStage(ctx, domain.StageDraft))
	assert.Equal(t, domain.StageDraft, content.Stage())
	assert.ErrorIs(t, content.UseStage(ctx, "archive"), domain.ErrInvalidInput)
	assert.Equal(t, domain.StageDraft, content.Stage())
}

func TestRecordFetcher_CountsClassFamilyInStageBeforeCutoff(t *testing.T) {
	ctx := context.Background()
	content := setupTestStore(t).ContentStore(pageFamily)
	cutoff := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, r := range []domain.Document{
		record("Page", 1, domain.StageLive, cutoff.Add(-time.Hour)),
		record("Page", 2, domain.StageLive, cutoff),
		record("BlogPost", 3, domain.StageLive, cutoff.Add(-time.Minute)),
		record("Page", 4, domain.StageLive, cutoff.Add(time.Second)),
		record("Page", 5, domain.StageDraft, cutoff.Add(-time.Hour)),
		record("File", 6, domain.StageLive, cutoff.Add(-time.Hour)),
	} {
		require.NoError(t, content.SaveRecord(ctx, r))
	}

	fetcher, err := content.NewFetcher(ctx, "Page", cutoff)
	require.NoError(t, err)
	assert.Equal(t, "Page", fetcher.Class())

	total, err := fetcher.TotalDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	docs, err := fetcher.Fetch(ctx, 10, 0)
	require.NoError(t, err)
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"Page_1", "Page_2", "BlogPost_3"}, ids)

	// Draft view sees only the draft record.
	require.NoError(t, content.UseStage(ctx, domain.StageDraft))
	draft, err := content.NewFetcher(ctx, "Page", cutoff)
	require.NoError(t, err)
	total, err = draft.TotalDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestRecordFetcher_PaginatesStably(t *testing.T) {
	ctx := context.Background()
	content := setupTestStore(t).ContentStore(pageFamily)
	edited := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for id := int64(25); id >= 1; id-- {
		class := "Page"
		if id%3 == 0 {
			class = "BlogPost"
		}
		require.NoError(t, content.SaveRecord(ctx, record(class, id, domain.StageLive, edited)))
	}

	fetcher, err := content.NewFetcher(ctx, "Page", edited.Add(time.Hour))
	require.NoError(t, err)

	seen := map[int64]bool{}
	var order []int64
	for offset := 0; offset < 25; offset += 10 {
		docs, err := fetcher.Fetch(ctx, 10, offset)
		require.NoError(t, err)
		for _, d := range docs {
			assert.False(t, seen[d.RecordID])
			seen[d.RecordID] = true
			order = append(order, d.RecordID)
		}
	}
	assert.Len(t, seen, 25)
	assert.IsIncreasing(t, order)

	docs, err := fetcher.Fetch(ctx, 10, 30)
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = fetcher.Fetch(ctx, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestContentStore_NewFetcher_EmptyClass(t *testing.T) {
	content := setupTestStore(t).ContentStore(nil)

	_, err := content.NewFetcher(context.Background(), "", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestContentStore_Dependents(t *testing.T) {
	ctx := context.Background()
	content := setupTestStore(t).ContentStore(nil)
	edited := time.Now()

	image := record("File", 1, domain.StageLive, edited)
	pageA := record("Page", 10, domain.StageLive, edited)
	pageB := record("Page", 11, domain.StageLive, edited)
	draftOnly := record("Page", 12, domain.StageDraft, edited)
	for _, r := range []domain.Document{image, pageA, pageB, draftOnly} {
		require.NoError(t, content.SaveRecord(ctx, r))
	}
	require.NoError(t, content.AddDependency(ctx, pageA, image))
	require.NoError(t, content.AddDependency(ctx, pageA, image))
	require.NoError(t, content.AddDependency(ctx, pageB, image))
	require.NoError(t, content.AddDependency(ctx, draftOnly, image))
	require.NoError(t, content.AddDependency(ctx, pageB, pageA))

	deps, err := content.Dependents(ctx, []domain.Document{image, pageA})
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, "Page_10", deps[0].ID)
	assert.Equal(t, "Page_11", deps[1].ID)

	none, err := content.Dependents(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
