package services

import (
	"time"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
	"github.com/custodia-labs/searchsync/internal/logger"
)

// IndexConfiguration answers questions about which classes and fields
// belong to which index. It never fails: missing configuration yields
// empty results.
type IndexConfiguration struct {
	settings  domain.SearchSettings
	indexes   []domain.IndexDefinition
	hierarchy driven.TypeHierarchy
}

// NewIndexConfiguration creates a configuration resolver.
// A nil hierarchy treats every class as a root with no ancestors.
func NewIndexConfiguration(cfg domain.SearchConfig, hierarchy driven.TypeHierarchy) *IndexConfiguration {
	if hierarchy == nil {
		hierarchy = flatHierarchy{}
	}
	return &IndexConfiguration{
		settings:  cfg.Settings,
		indexes:   cfg.Indexes,
		hierarchy: hierarchy,
	}
}

// IsEnabled reports whether indexing is switched on.
func (c *IndexConfiguration) IsEnabled() bool {
	return c.settings.Enabled
}

// BatchSize returns the configured batch size, always > 0.
func (c *IndexConfiguration) BatchSize() int {
	if c.settings.BatchSize < 1 {
		return domain.DefaultBatchSize
	}
	return c.settings.BatchSize
}

// SyncInterval returns the staleness interval string, e.g. "5 minutes".
func (c *IndexConfiguration) SyncInterval() string {
	if c.settings.SyncInterval == "" {
		return domain.DefaultSyncInterval
	}
	return c.settings.SyncInterval
}

// SyncCutoff returns now minus the sync interval.
func (c *IndexConfiguration) SyncCutoff(now time.Time) time.Time {
	d, err := domain.ParseInterval(c.SyncInterval())
	if err != nil {
		logger.Warn("Invalid sync interval %q, using %q: %v", c.SyncInterval(), domain.DefaultSyncInterval, err)
		d, _ = domain.ParseInterval(domain.DefaultSyncInterval)
	}
	return now.Add(-d)
}

// ShouldCrawlPageContent reports whether rendered page content is fetched.
func (c *IndexConfiguration) ShouldCrawlPageContent() bool {
	return c.settings.CrawlPageContent
}

// ShouldIncludePageHTML reports whether crawled content keeps its markup.
func (c *IndexConfiguration) ShouldIncludePageHTML() bool {
	return c.settings.IncludePageHTML
}

// ShouldUseSyncJobs reports whether indexing runs inline.
func (c *IndexConfiguration) ShouldUseSyncJobs() bool {
	return c.settings.UseSyncJobs
}

// ShouldTrackDependencies reports whether dependents are expanded.
func (c *IndexConfiguration) ShouldTrackDependencies() bool {
	return c.settings.AutoDependencyTracking
}

// IDField returns the backend document id field.
func (c *IndexConfiguration) IDField() string {
	if c.settings.IDField == "" {
		return domain.DefaultIDField
	}
	return c.settings.IDField
}

// SourceClassField returns the backend field holding the record class.
func (c *IndexConfiguration) SourceClassField() string {
	if c.settings.SourceClassField == "" {
		return domain.DefaultSourceClassField
	}
	return c.settings.SourceClassField
}

// DocumentMaxSize returns the rendered size limit in bytes, 0 for none.
func (c *IndexConfiguration) DocumentMaxSize() int {
	return c.settings.DocumentMaxSize
}

// IndexVariant returns the environment prefix for index names.
func (c *IndexConfiguration) IndexVariant() string {
	return c.settings.IndexVariant
}

// WithIndexVariant returns a copy using variant as index name prefix.
func (c *IndexConfiguration) WithIndexVariant(variant string) *IndexConfiguration {
	cp := *c
	cp.settings.IndexVariant = variant
	return &cp
}

// EnvironmentIndexName returns the backend name of an index.
func (c *IndexConfiguration) EnvironmentIndexName(index string) string {
	if c.settings.IndexVariant == "" {
		return index
	}
	return c.settings.IndexVariant + "-" + index
}

// Indexes returns all index definitions in configuration order.
func (c *IndexConfiguration) Indexes() []domain.IndexDefinition {
	return c.indexes
}

// IndexesForClassName returns every index that includes class or one of
// its ancestors. Excluded entries never match; within an index the first
// matching entry wins.
func (c *IndexConfiguration) IndexesForClassName(class string) map[string]domain.IndexDefinition {
	matches := make(map[string]domain.IndexDefinition)
	for _, index := range c.indexes {
		for _, inc := range index.IncludeClasses {
			if inc.Excluded() {
				continue
			}
			if class == inc.Class || c.isSubclassOf(class, inc.Class) {
				matches[index.Name] = index
				break
			}
		}
	}
	return matches
}

// IndexesForDocument returns the indexes a document belongs to.
func (c *IndexConfiguration) IndexesForDocument(doc domain.Document) map[string]domain.IndexDefinition {
	return c.IndexesForClassName(doc.SourceClass)
}

// ClassesForIndex returns every class listed by an index, excluded
// entries included.
func (c *IndexConfiguration) ClassesForIndex(index string) []string {
	def, ok := c.index(index)
	if !ok {
		return []string{}
	}
	classes := make([]string, 0, len(def.IncludeClasses))
	for _, inc := range def.IncludeClasses {
		classes = append(classes, inc.Class)
	}
	return classes
}

// SearchableClasses returns the union of included, non-excluded classes
// across all indexes, in first-seen order.
func (c *IndexConfiguration) SearchableClasses() []string {
	seen := make(map[string]bool)
	classes := []string{}
	for _, index := range c.indexes {
		for _, inc := range index.IncludeClasses {
			if inc.Excluded() || seen[inc.Class] {
				continue
			}
			seen[inc.Class] = true
			classes = append(classes, inc.Class)
		}
	}
	return classes
}

// SearchableBaseClasses returns the searchable classes that have no other
// searchable class as an ancestor.
func (c *IndexConfiguration) SearchableBaseClasses() []string {
	classes := c.SearchableClasses()
	base := make([]string, 0, len(classes))
	for _, candidate := range classes {
		root := true
		for _, other := range classes {
			if other != candidate && c.isSubclassOf(candidate, other) {
				root = false
				break
			}
		}
		if root {
			base = append(base, candidate)
		}
	}
	return base
}

// FieldsForClass resolves the search fields of class by walking its
// ancestry, most specific first, across all indexes.
//
// With legacy resolution every ancestor with a field table replaces the
// previous result, so the last match (the most general) wins. With
// most_specific resolution the walk stops at the first ancestor matched.
func (c *IndexConfiguration) FieldsForClass(class string) map[string]domain.Field {
	fields := make(map[string]domain.Field)
	for _, candidate := range c.hierarchy.Ancestry(class) {
		matched := false
		for _, index := range c.indexes {
			spec, ok := classSpec(index, candidate)
			if !ok || spec.Empty() {
				continue
			}
			matched = true
			fields = make(map[string]domain.Field, len(spec.Fields))
			for _, f := range spec.Fields {
				if f.Spec == nil {
					continue
				}
				fields[f.Name] = domain.NewField(f.Name, f.Spec)
			}
		}
		if matched && c.settings.FieldResolution == domain.FieldResolutionMostSpecific {
			break
		}
	}
	return fields
}

// FieldsForIndex merges the fields of every class in an index. Later
// classes overwrite same-named fields of earlier ones.
func (c *IndexConfiguration) FieldsForIndex(index string) map[string]domain.Field {
	fields := make(map[string]domain.Field)
	for _, class := range c.ClassesForIndex(index) {
		for name, f := range c.FieldsForClass(class) {
			fields[name] = f
		}
	}
	return fields
}

// IsClassIndexed reports whether class resolves to at least one field.
func (c *IndexConfiguration) IsClassIndexed(class string) bool {
	return len(c.FieldsForClass(class)) > 0
}

// isSubclassOf reports whether class strictly descends from parent.
func (c *IndexConfiguration) isSubclassOf(class, parent string) bool {
	ancestry := c.hierarchy.Ancestry(class)
	for i, a := range ancestry {
		if i == 0 && a == class {
			continue
		}
		if a == parent {
			return true
		}
	}
	return false
}

func (c *IndexConfiguration) index(name string) (domain.IndexDefinition, bool) {
	for _, index := range c.indexes {
		if index.Name == name {
			return index, true
		}
	}
	return domain.IndexDefinition{}, false
}

// classSpec looks up the spec of class within an index.
func classSpec(index domain.IndexDefinition, class string) (*domain.ClassSpec, bool) {
	for _, inc := range index.IncludeClasses {
		if inc.Class == class {
			return inc.Spec, inc.Spec != nil
		}
	}
	return nil, false
}

// flatHierarchy knows no inheritance.
type flatHierarchy struct{}

func (flatHierarchy) Ancestry(class string) []string { return []string{class} }

func (flatHierarchy) Subclasses(string) []string { return nil }
