package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "Page_12", DocumentID("Page", 12))
}

func TestStage_IsValid(t *testing.T) {
	assert.True(t, StageLive.IsValid())
	assert.True(t, StageDraft.IsValid())
	assert.False(t, Stage("archive").IsValid())
}
