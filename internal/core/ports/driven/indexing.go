package driven

import (
	"context"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

// IndexingService pushes documents and configuration to the search backend.
type IndexingService interface {
	// AddDocuments creates or replaces documents in every index that
	// includes their class.
	AddDocuments(ctx context.Context, docs []domain.Document) error

	// RemoveDocuments deletes documents from every index that includes
	// their class.
	RemoveDocuments(ctx context.Context, docs []domain.Document) error

	// Configure pushes the full index configuration to the backend.
	// It takes no arguments and is idempotent.
	Configure(ctx context.Context) error
}

// DependencyTracker finds documents whose index payload depends on others.
type DependencyTracker interface {
	// Dependents returns the documents depending on any of docs.
	Dependents(ctx context.Context, docs []domain.Document) ([]domain.Document, error)
}
