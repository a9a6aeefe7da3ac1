package driving

import "context"

// ConfigureService pushes the index configuration to the search backend.
type ConfigureService interface {
	// Configure syncs index settings. Failures wrap domain.ErrIndexingService.
	Configure(ctx context.Context) error
}
