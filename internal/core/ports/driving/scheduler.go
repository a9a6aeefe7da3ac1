package driving

import "context"

// Scheduler runs the incremental reindex on its interval.
type Scheduler interface {
	// Start blocks until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop waits for in-flight tasks to finish.
	Stop() error
}
