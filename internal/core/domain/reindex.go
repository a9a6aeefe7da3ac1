package domain

import (
	"strings"
	"time"
)

// JobStatus is the lifecycle state of a reindex job.
type JobStatus string

// Reindex job states.
const (
	JobPending  JobStatus = "pending"
	JobPlanning JobStatus = "planning"
	JobRunning  JobStatus = "running"
	JobComplete JobStatus = "complete"
)

// FetcherRef identifies a planned fetcher. TotalDocuments is the count taken
// at planning time; the plan never changes afterwards.
type FetcherRef struct {
	Class          string
	Until          time.Time
	TotalDocuments int
}

// Steps returns the number of batches this fetcher contributes.
func (f FetcherRef) Steps(batchSize int) int {
	if batchSize < 1 || f.TotalDocuments <= 0 {
		return 0
	}
	return (f.TotalDocuments + batchSize - 1) / batchSize
}

// ReindexState is the persisted cursor of a reindex job.
// It is replaced, never mutated, by each processed batch.
type ReindexState struct {
	// JobID is the unique identifier of the run.
	JobID string

	// OnlyClasses restricts the run to these classes when non-empty.
	OnlyClasses []string

	// BatchSize is the number of documents per step.
	BatchSize int

	// Until is the staleness cutoff fixed at planning time.
	Until time.Time

	// Fetchers is the ordered plan.
	Fetchers []FetcherRef

	// FetchIndex points at the active fetcher.
	FetchIndex int

	// FetchOffset is the offset within the active fetcher.
	FetchOffset int

	// CurrentStep counts processed batches.
	CurrentStep int

	// TotalSteps is the planned number of batches.
	TotalSteps int

	// IsComplete is set once every fetcher is exhausted.
	IsComplete bool

	// Status is the lifecycle state.
	Status JobStatus

	// LastError is the error of the last failed step, if any.
	LastError string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveFetcher returns the fetcher under the cursor.
func (s ReindexState) ActiveFetcher() (FetcherRef, bool) {
	if s.FetchIndex < 0 || s.FetchIndex >= len(s.Fetchers) {
		return FetcherRef{}, false
	}
	return s.Fetchers[s.FetchIndex], true
}

// Clone returns a deep copy of the state.
func (s ReindexState) Clone() ReindexState {
	c := s
	if s.OnlyClasses != nil {
		c.OnlyClasses = append([]string(nil), s.OnlyClasses...)
	}
	if s.Fetchers != nil {
		c.Fetchers = append([]FetcherRef(nil), s.Fetchers...)
	}
	return c
}

// Progress returns the completed fraction in [0, 1].
func (s ReindexState) Progress() float64 {
	if s.IsComplete || s.TotalSteps == 0 {
		return 1
	}
	p := float64(s.CurrentStep) / float64(s.TotalSteps)
	if p > 1 {
		return 1
	}
	return p
}

// ReindexTitle is the human-readable label of a reindex run.
func ReindexTitle(onlyClasses []string) string {
	title := "Search service reindex all documents"
	if len(onlyClasses) > 0 {
		title += " of class " + strings.Join(onlyClasses, ",")
	}
	return title
}
