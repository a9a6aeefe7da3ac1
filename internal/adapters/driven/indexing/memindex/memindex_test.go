package memindex

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/services"
)

func testSchema() *services.IndexConfiguration {
	return services.NewIndexConfiguration(domain.SearchConfig{
		Settings: domain.DefaultSearchSettings(),
		Indexes: []domain.IndexDefinition{{
			Name: "main",
			IncludeClasses: []domain.ClassInclusion{
				{Class: "Page", Spec: &domain.ClassSpec{Fields: []domain.FieldInclusion{
					{Name: "title", Spec: &domain.FieldSpec{Property: "Title"}},
				}}},
			},
		}},
	}, nil)
}

func TestIndex_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	idx := New(testSchema())

	require.NoError(t, idx.AddDocuments(ctx, []domain.Document{
		{ID: "Page_1", SourceClass: "Page", Data: map[string]any{"Title": "Home"}},
		{ID: "Page_2", SourceClass: "Page"},
		{ID: "File_3", SourceClass: "File"},
	}))
	assert.Equal(t, 2, idx.Count("main"))
	assert.Equal(t, 1, idx.AddCalls())

	doc, ok := idx.Document("main", "Page_1")
	require.True(t, ok)
	assert.Equal(t, "Home", doc["title"])

	require.NoError(t, idx.RemoveDocuments(ctx, []domain.Document{{ID: "Page_1", SourceClass: "Page"}}))
	assert.Equal(t, 1, idx.Count("main"))
	_, ok = idx.Document("main", "Page_1")
	assert.False(t, ok)
}

func TestIndex_Configure(t *testing.T) {
	idx := New(testSchema())

	require.NoError(t, idx.Configure(context.Background()))

	assert.Equal(t, 1, idx.Configured())
	fields := idx.Fields("main")
	require.Len(t, fields, 1)
	assert.Equal(t, "Title", fields[0].Property)
}

func TestIndex_FailNext(t *testing.T) {
	ctx := context.Background()
	idx := New(testSchema())
	boom := errors.New("boom")

	idx.FailNext(boom)
	assert.ErrorIs(t, idx.AddDocuments(ctx, []domain.Document{{ID: "Page_1", SourceClass: "Page"}}), boom)
	assert.Equal(t, 0, idx.Count("main"))

	require.NoError(t, idx.AddDocuments(ctx, []domain.Document{{ID: "Page_1", SourceClass: "Page"}}))
	assert.Equal(t, 1, idx.Count("main"))
}
