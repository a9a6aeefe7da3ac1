package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/searchsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/searchsync/internal/adapters/driven/hierarchy"
	"github.com/custodia-labs/searchsync/internal/adapters/driven/indexing/httpindex"
	"github.com/custodia-labs/searchsync/internal/adapters/driven/indexing/memindex"
	"github.com/custodia-labs/searchsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/searchsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
	"github.com/custodia-labs/searchsync/internal/core/services"
	"github.com/custodia-labs/searchsync/internal/fetchers"
	"github.com/custodia-labs/searchsync/internal/logger"
	"github.com/custodia-labs/searchsync/internal/normalisers/html"
)

// build wires the adapters and services for a configuration directory.
func build(home string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	searchConfig, err := file.LoadSearchConfig(configStore)
	if err != nil {
		return nil, fmt.Errorf("loading search config: %w", err)
	}
	backend, err := file.LoadBackend(configStore)
	if err != nil {
		return nil, fmt.Errorf("loading backend config: %w", err)
	}

	classes := hierarchy.NewStatic(searchConfig.Parents)
	config := services.NewIndexConfiguration(searchConfig, classes)

	indexing, err := newIndexingService(backend, config)
	if err != nil {
		return nil, err
	}

	interval, err := domain.ParseInterval(config.SyncInterval())
	if err != nil {
		return nil, err
	}

	dataDir := ""
	if home != "" {
		dataDir = filepath.Join(home, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("content database: %s", store.Path())

	content := store.ContentStore(classes)
	registry := fetchers.NewRegistry(classes)
	registry.SetFallback(content.NewFetcher)

	runner := services.NewReindexRunner(config, registry, content, indexing, content, store.JobStore())
	runner.SetNormaliser(html.New())

	schedulerConfig := domain.DefaultSchedulerConfig()
	schedulerConfig.TaskConfigs[domain.TaskIDIncrementalReindex] = domain.TaskConfig{
		Enabled:  config.IsEnabled(),
		Interval: interval,
	}
	scheduler := services.NewScheduler(schedulerConfig, store.SchedulerStore(), runner)

	return &cli.Services{
		Reindex:   runner,
		Configure: services.NewConfigurer(indexing),
		Scheduler: scheduler,
		Config:    configStore,
		Records:   content,
		Close:     store.Close,
	}, nil
}

// newIndexingService creates the configured indexing backend.
func newIndexingService(cfg file.BackendConfig, config *services.IndexConfiguration) (driven.IndexingService, error) {
	switch cfg.Type {
	case file.BackendHTTP:
		client, err := httpindex.New(httpindex.Config{
			BaseURL: cfg.URL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
			RateLimit: httpindex.RateLimitConfig{
				RequestsPerSecond: cfg.RequestsPerSecond,
				BurstSize:         cfg.Burst,
			},
		}, config)
		if err != nil {
			return nil, fmt.Errorf("creating http backend: %w", err)
		}
		logger.Debug("indexing backend: %s", cfg.URL)
		return client, nil
	case file.BackendMemory:
		logger.Warn("no backend.url configured, documents are indexed in memory only")
		return memindex.New(config), nil
	default:
		return nil, errors.New("unknown backend " + cfg.Type)
	}
}
