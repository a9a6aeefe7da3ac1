package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetcherRef_Steps(t *testing.T) {
	tests := []struct {
		total, batch, want int
	}{
		{250, 100, 3},
		{200, 100, 2},
		{1, 100, 1},
		{0, 100, 0},
		{7, 1, 7},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FetcherRef{TotalDocuments: tt.total}.Steps(tt.batch))
	}
}

func TestReindexState_ActiveFetcher(t *testing.T) {
	s := ReindexState{Fetchers: []FetcherRef{{Class: "Page"}}}
	f, ok := s.ActiveFetcher()
	assert.True(t, ok)
	assert.Equal(t, "Page", f.Class)

	s.FetchIndex = 1
	_, ok = s.ActiveFetcher()
	assert.False(t, ok)
}

func TestReindexState_Clone(t *testing.T) {
	s := ReindexState{OnlyClasses: []string{"Page"}, Fetchers: []FetcherRef{{Class: "Page"}}}
	c := s.Clone()
	c.OnlyClasses[0] = "File"
	c.Fetchers[0].Class = "File"
	assert.Equal(t, "Page", s.OnlyClasses[0])
	assert.Equal(t, "Page", s.Fetchers[0].Class)
}

func TestReindexState_Progress(t *testing.T) {
	assert.Equal(t, 1.0, ReindexState{}.Progress())
	assert.Equal(t, 0.5, ReindexState{CurrentStep: 1, TotalSteps: 2}.Progress())
	assert.Equal(t, 1.0, ReindexState{CurrentStep: 1, TotalSteps: 2, IsComplete: true}.Progress())
}

func TestReindexTitle(t *testing.T) {
	assert.Equal(t, "Search service reindex all documents", ReindexTitle(nil))
	assert.Equal(t, "Search service reindex all documents of class Page,File",
		ReindexTitle([]string{"Page", "File"}))
}
