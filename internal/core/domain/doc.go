// Package domain defines the core business entities for searchsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - IndexDefinition: An index and the record classes it includes
//   - Field: A resolved search field for a class
//   - Document: A searchable record read from the content database
//   - ReindexState: The persisted cursor of a reindex job
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
