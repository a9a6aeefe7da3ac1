package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldResolution selects how fields are resolved along a class's ancestry.
type FieldResolution string

const (
	// FieldResolutionLegacy walks the ancestry most-specific first and lets
	// the last ancestor with a field table win.
	FieldResolutionLegacy FieldResolution = "legacy"

	// FieldResolutionMostSpecific lets the most specific ancestor with a
	// field table win.
	FieldResolutionMostSpecific FieldResolution = "most_specific"
)

// IsValid returns true if the resolution mode is recognised.
func (r FieldResolution) IsValid() bool {
	return r == FieldResolutionLegacy || r == FieldResolutionMostSpecific
}

// SearchSettings holds the global search tunables.
type SearchSettings struct {
	// Enabled is the master switch for indexing.
	Enabled bool

	// BatchSize is the number of documents per reindex step.
	BatchSize int

	// SyncInterval is the staleness window, e.g. "5 minutes".
	SyncInterval string

	// CrawlPageContent enables fetching rendered page content.
	CrawlPageContent bool

	// IncludePageHTML keeps markup in crawled content.
	IncludePageHTML bool

	// UseSyncJobs runs indexing inline instead of queueing.
	UseSyncJobs bool

	// IDField is the document id field name on the backend.
	IDField string

	// SourceClassField is the field carrying the record class.
	SourceClassField string

	// DocumentMaxSize is the maximum rendered document size in bytes.
	// Zero means unlimited.
	DocumentMaxSize int

	// AutoDependencyTracking enables dependent-document expansion.
	AutoDependencyTracking bool

	// IndexVariant is prefixed to index names on the backend.
	IndexVariant string

	// FieldResolution selects ancestor precedence for field lookup.
	FieldResolution FieldResolution
}

// Default tunables.
const (
	DefaultBatchSize        = 100
	DefaultSyncInterval     = "5 minutes"
	DefaultIDField          = "id"
	DefaultSourceClassField = "source_class"
)

// DefaultSearchSettings returns the built-in defaults.
func DefaultSearchSettings() SearchSettings {
	return SearchSettings{
		Enabled:                true,
		BatchSize:              DefaultBatchSize,
		SyncInterval:           DefaultSyncInterval,
		CrawlPageContent:       true,
		IncludePageHTML:        true,
		UseSyncJobs:            false,
		IDField:                DefaultIDField,
		SourceClassField:       DefaultSourceClassField,
		AutoDependencyTracking: true,
		FieldResolution:        FieldResolutionLegacy,
	}
}

// SearchConfig is the full search configuration: tunables, index
// definitions and the class hierarchy (child -> parent).
type SearchConfig struct {
	Settings SearchSettings
	Indexes  []IndexDefinition
	Parents  map[string]string
}

// ParseInterval parses a staleness interval. It accepts Go duration
// strings ("5m") and "<n> <unit>" phrases ("5 minutes", "1 hour").
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty interval", ErrInvalidInput)
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: interval %q", ErrInvalidInput, s)
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: interval %q", ErrInvalidInput, s)
	}

	var unit time.Duration
	switch strings.TrimSuffix(strings.ToLower(parts[1]), "s") {
	case "second", "sec":
		unit = time.Second
	case "minute", "min":
		unit = time.Minute
	case "hour":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	case "week":
		unit = 7 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("%w: interval unit %q", ErrInvalidInput, parts[1])
	}
	return time.Duration(n) * unit, nil
}
