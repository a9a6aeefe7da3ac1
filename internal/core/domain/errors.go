package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown backend or fetcher type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Indexing Errors.

	// ErrIndexingService indicates the search backend rejected a request
	// or is misconfigured. Configure failures are always reported with it.
	ErrIndexingService = errors.New("indexing service error")

	// ErrIndexingDisabled indicates indexing is switched off in configuration.
	ErrIndexingDisabled = errors.New("indexing disabled")

	// Reindex Errors.

	// ErrFetcherUnavailable indicates a planned fetcher could not be rebuilt
	// while processing a reindex batch.
	ErrFetcherUnavailable = errors.New("fetcher unavailable")

	// ErrJobInProgress indicates a reindex job is already running.
	ErrJobInProgress = errors.New("reindex job in progress")
)
