package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

var (
	_ driven.StageSwitcher     = (*ContentStore)(nil)
	_ driven.DependencyTracker = (*ContentStore)(nil)
)

type recordKey struct {
	class string
	id    int64
}

// ContentStore is an in-memory content database with draft and live stages.
type ContentStore struct {
	mu        sync.RWMutex
	hierarchy driven.TypeHierarchy
	stage     domain.Stage
	records   map[domain.Stage]map[recordKey]domain.Document
	// dependents maps a record to the records depending on it.
	dependents map[recordKey]map[recordKey]bool
}

// NewContentStore creates an empty store reading the live stage. The
// hierarchy may be nil, in which case fetchers cover only their own class.
func NewContentStore(hierarchy driven.TypeHierarchy) *ContentStore {
	return &ContentStore{
		hierarchy: hierarchy,
		stage:     domain.StageLive,
		records: map[domain.Stage]map[recordKey]domain.Document{
			domain.StageDraft: {},
			domain.StageLive:  {},
		},
		dependents: make(map[recordKey]map[recordKey]bool),
	}
}

// UseStage switches the stage that subsequent reads use.
func (s *ContentStore) UseStage(_ context.Context, stage domain.Stage) error {
	if !stage.IsValid() {
		return fmt.Errorf("%w: stage %q", domain.ErrInvalidInput, stage)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = stage
	return nil
}

// Stage returns the active stage.
func (s *ContentStore) Stage() domain.Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage
}

// SaveRecord creates or replaces a record in its stage.
func (s *ContentStore) SaveRecord(_ context.Context, doc domain.Document) error {
	if doc.SourceClass == "" {
		return fmt.Errorf("%w: record has no class", domain.ErrInvalidInput)
	}
	if doc.Stage == "" {
		doc.Stage = domain.StageLive
	}
	if !doc.Stage.IsValid() {
		return fmt.Errorf("%w: stage %q", domain.ErrInvalidInput, doc.Stage)
	}
	if doc.LastEdited.IsZero() {
		doc.LastEdited = time.Now()
	}
	doc.ID = domain.DocumentID(doc.SourceClass, doc.RecordID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[doc.Stage][recordKey{doc.SourceClass, doc.RecordID}] = doc
	return nil
}

// DeleteRecord removes a record from a stage.
func (s *ContentStore) DeleteRecord(_ context.Context, class string, id int64, stage domain.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records[stage], recordKey{class, id})
	return nil
}

// AddDependency records that dependent must be reindexed when dependency
// changes.
func (s *ContentStore) AddDependency(_ context.Context, dependent, dependency domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := recordKey{dependency.SourceClass, dependency.RecordID}
	if s.dependents[target] == nil {
		s.dependents[target] = make(map[recordKey]bool)
	}
	s.dependents[target][recordKey{dependent.SourceClass, dependent.RecordID}] = true
	return nil
}

// Dependents returns the records of the active stage that depend on any of
// docs, each once, ordered by class then id.
func (s *ContentStore) Dependents(_ context.Context, docs []domain.Document) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[recordKey]bool)
	for _, d := range docs {
		for k := range s.dependents[recordKey{d.SourceClass, d.RecordID}] {
			found[k] = true
		}
	}

	out := make([]domain.Document, 0, len(found))
	for k := range found {
		if doc, ok := s.records[s.stage][k]; ok {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceClass != out[j].SourceClass {
			return out[i].SourceClass < out[j].SourceClass
		}
		return out[i].RecordID < out[j].RecordID
	})
	return out, nil
}

// NewFetcher snapshots the class family of the active stage edited at or
// before until. It has the shape of a fetcher registry factory.
func (s *ContentStore) NewFetcher(_ context.Context, class string, until time.Time) (driven.DocumentFetcher, error) {
	if class == "" {
		return nil, fmt.Errorf("%w: empty class", domain.ErrInvalidInput)
	}
	family := map[string]bool{class: true}
	if s.hierarchy != nil {
		for _, sub := range s.hierarchy.Subclasses(class) {
			family[sub] = true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for k, doc := range s.records[s.stage] {
		if family[k.class] && !doc.LastEdited.After(until) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].RecordID != docs[j].RecordID {
			return docs[i].RecordID < docs[j].RecordID
		}
		return docs[i].SourceClass < docs[j].SourceClass
	})
	return &sliceFetcher{class: class, docs: docs}, nil
}

// sliceFetcher pages over a fixed, ordered snapshot.
type sliceFetcher struct {
	class string
	docs  []domain.Document
}

var _ driven.DocumentFetcher = (*sliceFetcher)(nil)

func (f *sliceFetcher) Class() string { return f.class }

func (f *sliceFetcher) TotalDocuments(_ context.Context) (int, error) {
	return len(f.docs), nil
}

func (f *sliceFetcher) Fetch(_ context.Context, limit, offset int) ([]domain.Document, error) {
	if limit < 1 || offset < 0 {
		return nil, fmt.Errorf("%w: limit %d offset %d", domain.ErrInvalidInput, limit, offset)
	}
	if offset >= len(f.docs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.docs) {
		end = len(f.docs)
	}
	return append([]domain.Document(nil), f.docs[offset:end]...), nil
}
