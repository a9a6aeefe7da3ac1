package mcp

import (
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Reindex runs and reports reindex jobs.
	Reindex driving.ReindexService

	// Configure pushes index settings to the search backend. Optional.
	Configure driving.ConfigureService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Reindex == nil {
		return ErrMissingReindexService
	}
	return nil
}
