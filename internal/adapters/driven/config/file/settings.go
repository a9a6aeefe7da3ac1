package file

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// Keys of the search tunables, relative to the [search] table.
const (
	KeyEnabled                = "enabled"
	KeyBatchSize              = "batch_size"
	KeySyncInterval           = "sync_interval"
	KeyCrawlPageContent       = "crawl_page_content"
	KeyIncludePageHTML        = "include_page_html"
	KeyUseSyncJobs            = "use_sync_jobs"
	KeyIDField                = "id_field"
	KeySourceClassField       = "source_class_field"
	KeyDocumentMaxSize        = "document_max_size"
	KeyAutoDependencyTracking = "auto_dependency_tracking"
	KeyIndexVariant           = "index_variant"
	KeyFieldResolution        = "field_resolution"
)

const settingsTable = "search"

type settingKind int

const (
	kindBool settingKind = iota
	kindInt
	kindString
)

var settingKinds = map[string]settingKind{
	KeyEnabled:                kindBool,
	KeyBatchSize:              kindInt,
	KeySyncInterval:           kindString,
	KeyCrawlPageContent:       kindBool,
	KeyIncludePageHTML:        kindBool,
	KeyUseSyncJobs:            kindBool,
	KeyIDField:                kindString,
	KeySourceClassField:       kindString,
	KeyDocumentMaxSize:        kindInt,
	KeyAutoDependencyTracking: kindBool,
	KeyIndexVariant:           kindString,
	KeyFieldResolution:        kindString,
}

// SettingKeys returns the known tunable keys, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingPath returns the dotted store key of a tunable.
func SettingPath(key string) string {
	return settingsTable + "." + key
}

// ParseSetting converts a raw command-line value to the type of key and
// validates it.
func ParseSetting(key, raw string) (any, error) {
	kind, ok := settingKinds[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return b, nil
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		if key == KeyBatchSize && n < 1 {
			return nil, fmt.Errorf("%w: %s must be greater than 0", domain.ErrInvalidInput, key)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		return int64(n), nil
	default:
		raw = strings.TrimSpace(raw)
		switch key {
		case KeySyncInterval:
			if _, err := domain.ParseInterval(raw); err != nil {
				return nil, err
			}
		case KeyFieldResolution:
			if !domain.FieldResolution(raw).IsValid() {
				return nil, fmt.Errorf("%w: %s must be %q or %q", domain.ErrInvalidInput, key,
					domain.FieldResolutionLegacy, domain.FieldResolutionMostSpecific)
			}
		}
		return raw, nil
	}
}

// LoadSettings reads the [search] table over the defaults. Keys that are
// absent keep their default value.
func LoadSettings(store driven.ConfigStore) (domain.SearchSettings, error) {
	s := domain.DefaultSearchSettings()

	has := func(key string) bool {
		_, ok := store.Get(SettingPath(key))
		return ok
	}
	boolean := func(key string, dst *bool) {
		if has(key) {
			*dst = store.GetBool(SettingPath(key))
		}
	}
	integer := func(key string, dst *int) {
		if has(key) {
			*dst = store.GetInt(SettingPath(key))
		}
	}
	str := func(key string, dst *string) {
		if has(key) {
			*dst = store.GetString(SettingPath(key))
		}
	}

	boolean(KeyEnabled, &s.Enabled)
	integer(KeyBatchSize, &s.BatchSize)
	str(KeySyncInterval, &s.SyncInterval)
	boolean(KeyCrawlPageContent, &s.CrawlPageContent)
	boolean(KeyIncludePageHTML, &s.IncludePageHTML)
	boolean(KeyUseSyncJobs, &s.UseSyncJobs)
	str(KeyIDField, &s.IDField)
	str(KeySourceClassField, &s.SourceClassField)
	integer(KeyDocumentMaxSize, &s.DocumentMaxSize)
	boolean(KeyAutoDependencyTracking, &s.AutoDependencyTracking)
	str(KeyIndexVariant, &s.IndexVariant)

	var resolution string
	str(KeyFieldResolution, &resolution)
	if resolution != "" {
		s.FieldResolution = domain.FieldResolution(resolution)
	}

	if s.BatchSize < 1 {
		return s, fmt.Errorf("%w: search.%s must be greater than 0", domain.ErrInvalidInput, KeyBatchSize)
	}
	if !s.FieldResolution.IsValid() {
		return s, fmt.Errorf("%w: unknown field resolution %q", domain.ErrInvalidInput, s.FieldResolution)
	}
	if _, err := domain.ParseInterval(s.SyncInterval); err != nil {
		return s, fmt.Errorf("search.%s: %w", KeySyncInterval, err)
	}
	return s, nil
}

// SettingValues returns every tunable of s keyed by setting key.
func SettingValues(s domain.SearchSettings) map[string]any {
	return map[string]any{
		KeyEnabled:                s.Enabled,
		KeyBatchSize:              s.BatchSize,
		KeySyncInterval:           s.SyncInterval,
		KeyCrawlPageContent:       s.CrawlPageContent,
		KeyIncludePageHTML:        s.IncludePageHTML,
		KeyUseSyncJobs:            s.UseSyncJobs,
		KeyIDField:                s.IDField,
		KeySourceClassField:       s.SourceClassField,
		KeyDocumentMaxSize:        s.DocumentMaxSize,
		KeyAutoDependencyTracking: s.AutoDependencyTracking,
		KeyIndexVariant:           s.IndexVariant,
		KeyFieldResolution:        string(s.FieldResolution),
	}
}
