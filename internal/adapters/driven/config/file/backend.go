package file

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// Indexing backend types.
const (
	BackendHTTP   = "http"
	BackendMemory = "memory"
)

// APIKeyEnv overrides backend.api_key when set.
const APIKeyEnv = "SEARCHSYNC_API_KEY"

// BackendConfig selects and configures the indexing backend.
type BackendConfig struct {
	Type              string
	URL               string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// LoadBackend reads the [backend] table. Without a type, a configured URL
// selects the HTTP backend and its absence the in-memory one.
func LoadBackend(store driven.ConfigStore) (BackendConfig, error) {
	cfg := BackendConfig{
		Type:   strings.ToLower(store.GetString("backend.type")),
		URL:    store.GetString("backend.url"),
		APIKey: store.GetString("backend.api_key"),
		Burst:  store.GetInt("backend.burst"),
	}
	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.APIKey = key
	}

	switch v := mustGet(store, "backend.requests_per_second").(type) {
	case float64:
		cfg.RequestsPerSecond = v
	case int64:
		cfg.RequestsPerSecond = float64(v)
	}

	if raw := store.GetString("backend.timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("%w: backend.timeout %q", domain.ErrInvalidInput, raw)
		}
		cfg.Timeout = d
	}

	if cfg.Type == "" {
		cfg.Type = BackendMemory
		if cfg.URL != "" {
			cfg.Type = BackendHTTP
		}
	}
	switch cfg.Type {
	case BackendMemory:
	case BackendHTTP:
		if cfg.URL == "" {
			return cfg, fmt.Errorf("%w: backend.url is required for the http backend", domain.ErrInvalidInput)
		}
	default:
		return cfg, fmt.Errorf("%w: backend %q", domain.ErrUnsupportedType, cfg.Type)
	}
	return cfg, nil
}

func mustGet(store driven.ConfigStore, key string) any {
	v, _ := store.Get(key)
	return v
}
