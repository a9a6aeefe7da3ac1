// Package memindex is an in-memory driven.IndexingService. It keeps the
// rendered documents per environment index name, for tests and dry runs.
package memindex

import (
	"context"
	"sync"

	"github.com/custodia-labs/searchsync/internal/adapters/driven/indexing"
	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.IndexingService = (*Index)(nil)

// Index holds rendered documents keyed by index then document id.
type Index struct {
	mu         sync.RWMutex
	schema     indexing.Schema
	documents  map[string]map[string]map[string]any
	settings   map[string][]domain.Field
	failNext   error
	addCalls   int
	configured int
}

// New creates an empty index for the schema.
func New(schema indexing.Schema) *Index {
	return &Index{
		schema:    schema,
		documents: make(map[string]map[string]map[string]any),
		settings:  make(map[string][]domain.Field),
	}
}

// FailNext makes the next call return err, then recovers.
func (x *Index) FailNext(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.failNext = err
}

func (x *Index) takeFailure() error {
	err := x.failNext
	x.failNext = nil
	return err
}

// AddDocuments stores the rendered documents in every index they belong to.
func (x *Index) AddDocuments(_ context.Context, docs []domain.Document) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.takeFailure(); err != nil {
		return err
	}
	x.addCalls++
	for index, group := range indexing.GroupByIndex(x.schema, docs) {
		if x.documents[index] == nil {
			x.documents[index] = make(map[string]map[string]any)
		}
		for _, d := range group {
			x.documents[index][d.ID] = indexing.Render(x.schema, d)
		}
	}
	return nil
}

// RemoveDocuments deletes documents from every index they belong to.
func (x *Index) RemoveDocuments(_ context.Context, docs []domain.Document) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.takeFailure(); err != nil {
		return err
	}
	for index, group := range indexing.GroupByIndex(x.schema, docs) {
		for _, d := range group {
			delete(x.documents[index], d.ID)
		}
	}
	return nil
}

// Configure records the field list of every index.
func (x *Index) Configure(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.takeFailure(); err != nil {
		return err
	}
	x.configured++
	for _, def := range x.schema.Indexes() {
		x.settings[x.schema.EnvironmentIndexName(def.Name)] = indexing.FieldList(x.schema, def.Name)
	}
	return nil
}

// Document returns a stored document.
func (x *Index) Document(index, id string) (map[string]any, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	doc, ok := x.documents[index][id]
	return doc, ok
}

// Count returns the number of documents in an index.
func (x *Index) Count(index string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.documents[index])
}

// Fields returns the configured fields of an index.
func (x *Index) Fields(index string) []domain.Field {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.settings[index]
}

// AddCalls returns the number of successful add batches.
func (x *Index) AddCalls() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.addCalls
}

// Configured returns how many times Configure succeeded.
func (x *Index) Configured() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.configured
}
