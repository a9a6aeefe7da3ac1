// Package mcp provides an MCP (Model Context Protocol) server adapter for searchsync.
// It lets AI assistants queue reindex jobs, follow their progress and push
// the index configuration.
package mcp

import "errors"

// ErrMissingReindexService is returned when the reindex service is not provided.
var ErrMissingReindexService = errors.New("mcp: reindex service is required")
