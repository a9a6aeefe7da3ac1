// Package driving defines what the CLI, HTTP and MCP adapters call into:
// reindex job control, index configuration and the background scheduler.
//
// Implementations live in internal/core/services.
package driving
