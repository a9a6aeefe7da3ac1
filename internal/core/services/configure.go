package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
	"github.com/custodia-labs/searchsync/internal/logger"
)

// Ensure Configurer implements the interface.
var _ driving.ConfigureService = (*Configurer)(nil)

// Configurer pushes the index configuration to the search backend.
type Configurer struct {
	indexing driven.IndexingService
}

// NewConfigurer creates a configure service.
func NewConfigurer(indexing driven.IndexingService) *Configurer {
	return &Configurer{indexing: indexing}
}

// Configure syncs index settings. Failures are reported as
// domain.ErrIndexingService and never retried.
func (c *Configurer) Configure(ctx context.Context) error {
	if c.indexing == nil {
		return fmt.Errorf("%w: no indexing service configured", domain.ErrIndexingService)
	}
	logger.Info("Pushing index configuration")
	if err := c.indexing.Configure(ctx); err != nil {
		if errors.Is(err, domain.ErrIndexingService) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrIndexingService, err)
	}
	return nil
}
