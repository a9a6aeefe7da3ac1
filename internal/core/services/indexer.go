package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
	"github.com/custodia-labs/searchsync/internal/logger"
)

// Indexer drives documents through the indexing service one chunk at a
// time. Dependent documents discovered along the way are queued for
// re-adding when dependency processing is enabled.
type Indexer struct {
	config    *IndexConfiguration
	service   driven.IndexingService
	tracker   driven.DependencyTracker
	cleaner   driven.Normaliser
	method    domain.IndexMethod
	batchSize int

	processDependencies bool

	pending    []domain.Document
	dependents []domain.Document
	seen       map[string]bool
	processed  int
	skipped    int
}

// NewIndexer creates a pipeline for docs. A batchSize below 1 falls back
// to the configured batch size. The tracker may be nil.
func NewIndexer(
	config *IndexConfiguration,
	service driven.IndexingService,
	tracker driven.DependencyTracker,
	docs []domain.Document,
	method domain.IndexMethod,
	batchSize int,
) *Indexer {
	if batchSize < 1 {
		batchSize = config.BatchSize()
	}
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		seen[d.ID] = true
	}
	return &Indexer{
		config:              config,
		service:             service,
		tracker:             tracker,
		method:              method,
		batchSize:           batchSize,
		processDependencies: config.ShouldTrackDependencies(),
		pending:             append([]domain.Document(nil), docs...),
		seen:                seen,
	}
}

// SetNormaliser sets the normaliser applied to added documents when page
// HTML is excluded from the index.
func (i *Indexer) SetNormaliser(n driven.Normaliser) *Indexer {
	i.cleaner = n
	return i
}

// SetProcessDependencies toggles dependent-document expansion.
func (i *Indexer) SetProcessDependencies(v bool) *Indexer {
	i.processDependencies = v
	return i
}

// ProcessDependencies reports whether dependents are expanded.
func (i *Indexer) ProcessDependencies() bool {
	return i.processDependencies
}

// Method returns the mutation applied to the primary documents.
func (i *Indexer) Method() domain.IndexMethod {
	return i.method
}

// Finished reports whether no work remains.
func (i *Indexer) Finished() bool {
	return len(i.pending) == 0 && len(i.dependents) == 0
}

// Processed returns the number of documents pushed so far.
func (i *Indexer) Processed() int {
	return i.processed
}

// Skipped returns the number of documents dropped before pushing.
func (i *Indexer) Skipped() int {
	return i.skipped
}

// ProcessNode pushes exactly one chunk. The chunk stays queued if the
// push fails, so the call can be retried.
func (i *Indexer) ProcessNode(ctx context.Context) error {
	if i.Finished() {
		return nil
	}

	queue, method := &i.pending, i.method
	if len(i.pending) == 0 {
		queue, method = &i.dependents, domain.MethodAdd
	}

	n := i.batchSize
	if n > len(*queue) {
		n = len(*queue)
	}
	chunk := (*queue)[:n]

	if err := i.push(ctx, chunk, method); err != nil {
		return err
	}
	*queue = (*queue)[n:]

	if i.processDependencies && i.tracker != nil {
		if err := i.expand(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// Run processes nodes until finished.
func (i *Indexer) Run(ctx context.Context) error {
	for !i.Finished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := i.ProcessNode(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (i *Indexer) push(ctx context.Context, chunk []domain.Document, method domain.IndexMethod) error {
	switch method {
	case domain.MethodAdd:
		docs, err := i.normalise(ctx, chunk)
		if err != nil {
			return err
		}
		docs = i.indexable(docs)
		if len(docs) == 0 {
			return nil
		}
		if err := i.service.AddDocuments(ctx, docs); err != nil {
			return fmt.Errorf("add documents: %w", err)
		}
		i.processed += len(docs)
		logger.Debug("Pushed %d documents (%s)", len(docs), method)
	case domain.MethodRemove:
		if err := i.service.RemoveDocuments(ctx, chunk); err != nil {
			return fmt.Errorf("remove documents: %w", err)
		}
		i.processed += len(chunk)
		logger.Debug("Pushed %d documents (%s)", len(chunk), method)
	default:
		return fmt.Errorf("%w: index method %q", domain.ErrInvalidInput, method)
	}
	return nil
}

// normalise applies the normaliser unless page HTML is kept.
func (i *Indexer) normalise(ctx context.Context, chunk []domain.Document) ([]domain.Document, error) {
	if i.cleaner == nil || i.config.ShouldIncludePageHTML() {
		return chunk, nil
	}
	docs := make([]domain.Document, len(chunk))
	for n, d := range chunk {
		out, err := i.cleaner.Normalise(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("normalise %s: %w", d.ID, err)
		}
		docs[n] = out
	}
	return docs, nil
}

// indexable drops documents of unindexed classes and oversized documents.
func (i *Indexer) indexable(chunk []domain.Document) []domain.Document {
	maxSize := i.config.DocumentMaxSize()
	docs := make([]domain.Document, 0, len(chunk))
	for _, d := range chunk {
		if !i.config.IsClassIndexed(d.SourceClass) {
			logger.Debug("Skipping %s: class %s is not indexed", d.ID, d.SourceClass)
			i.skipped++
			continue
		}
		if maxSize > 0 {
			payload, err := json.Marshal(d.Data)
			if err != nil || len(payload) > maxSize {
				logger.Warn("Skipping %s: document exceeds %d bytes", d.ID, maxSize)
				i.skipped++
				continue
			}
		}
		docs = append(docs, d)
	}
	return docs
}

func (i *Indexer) expand(ctx context.Context, chunk []domain.Document) error {
	deps, err := i.tracker.Dependents(ctx, chunk)
	if err != nil {
		return fmt.Errorf("find dependents: %w", err)
	}
	for _, d := range deps {
		if i.seen[d.ID] {
			continue
		}
		i.seen[d.ID] = true
		i.dependents = append(i.dependents, d)
	}
	return nil
}
