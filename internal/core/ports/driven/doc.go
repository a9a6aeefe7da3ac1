// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentFetcher: Enumerates stale documents of one class
//   - FetcherRegistry: Selects a DocumentFetcher per class
//   - IndexingService: Pushes documents and configuration to the backend
//   - TypeHierarchy: Class ancestry lookups
//   - StageSwitcher: Selects the live or draft content view
//   - ReindexJobStore: Reindex job state persistence
//   - SchedulerStore: Scheduler task persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DependencyTracker: Without it, dependent documents are never expanded.
//   - Normaliser: Without it, page HTML is indexed as stored.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
