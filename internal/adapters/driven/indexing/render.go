// Package indexing holds what the indexing backends share: the schema they
// read from the index configuration and the document projection.
package indexing

import (
	"sort"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

// Schema is the part of the index configuration a backend reads.
// *services.IndexConfiguration satisfies it.
type Schema interface {
	Indexes() []domain.IndexDefinition
	IndexesForDocument(doc domain.Document) map[string]domain.IndexDefinition
	FieldsForClass(class string) map[string]domain.Field
	FieldsForIndex(index string) map[string]domain.Field
	EnvironmentIndexName(index string) string
	IDField() string
	SourceClassField() string
}

// Render projects a document onto the search fields of its class. Fields
// whose property is absent from the record are omitted.
func Render(schema Schema, doc domain.Document) map[string]any {
	body := map[string]any{
		schema.IDField():          doc.ID,
		schema.SourceClassField(): doc.SourceClass,
	}
	for name, field := range schema.FieldsForClass(doc.SourceClass) {
		if v, ok := doc.Data[field.Property]; ok {
			body[name] = v
		}
	}
	return body
}

// GroupByIndex buckets documents by the environment name of every index
// they belong to. Documents of unindexed classes are dropped.
func GroupByIndex(schema Schema, docs []domain.Document) map[string][]domain.Document {
	groups := make(map[string][]domain.Document)
	for _, d := range docs {
		for name := range schema.IndexesForDocument(d) {
			env := schema.EnvironmentIndexName(name)
			groups[env] = append(groups[env], d)
		}
	}
	return groups
}

// SortedKeys returns the keys of m in order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FieldList returns the fields of an index ordered by name.
func FieldList(schema Schema, index string) []domain.Field {
	fields := schema.FieldsForIndex(index)
	out := make([]domain.Field, 0, len(fields))
	for _, name := range SortedKeys(fields) {
		out = append(out, fields[name])
	}
	return out
}
