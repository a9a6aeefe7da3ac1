// Package services implements the driving port interfaces.
//
// IndexConfiguration answers which indexes, classes and fields are
// searchable. Indexer pushes documents to the search backend in chunks,
// ReindexJob plans and executes one resumable batch at a time, and
// ReindexRunner persists job state between steps. The scheduler triggers
// incremental reindexes on an interval.
//
// Services are pure Go and depend only on port interfaces.
package services
