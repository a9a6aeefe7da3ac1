package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

// DocumentFetcher enumerates the documents of one record class that need
// (re)indexing as of the cutoff it was created with.
type DocumentFetcher interface {
	// Class returns the record class this fetcher enumerates.
	Class() string

	// TotalDocuments counts outstanding documents as of the cutoff.
	TotalDocuments(ctx context.Context) (int, error)

	// Fetch returns up to limit documents starting at offset.
	// Ordering must be stable across calls with the same cutoff.
	Fetch(ctx context.Context, limit, offset int) ([]domain.Document, error)
}

// FetcherRegistry selects a DocumentFetcher for a record class.
type FetcherRegistry interface {
	// Fetcher returns a fetcher for class as of until.
	// Returns nil and no error if no fetcher applies.
	Fetcher(ctx context.Context, class string, until time.Time) (DocumentFetcher, error)
}
