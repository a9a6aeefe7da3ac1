package driven

import (
	"context"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

// StageSwitcher selects the content view used by subsequent reads.
type StageSwitcher interface {
	// UseStage switches data access to stage.
	UseStage(ctx context.Context, stage domain.Stage) error
}
