// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements several ports through a single database connection:
//
//   - ContentStore: staged records and their dependencies, the fetchers
//     reading them, the stage switch and the dependency tracker
//   - ReindexJobStore: reindex job state, msgpack encoded and lz4 compressed
//   - SchedulerStore: scheduled task state and execution history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.searchsync/data/searchsync.db
package sqlite
