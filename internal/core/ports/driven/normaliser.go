package driven

import (
	"context"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

// Normaliser rewrites document data before it is sent to the indexing
// service. Implementations return a copy and leave the input untouched.
type Normaliser interface {
	Normalise(ctx context.Context, doc domain.Document) (domain.Document, error)
}
