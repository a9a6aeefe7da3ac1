package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// dependencyQueryChunk bounds the number of records per dependents query.
const dependencyQueryChunk = 200

// ContentStore is the content database: staged records, the dependencies
// between them and the active stage that fetchers read from.
type ContentStore struct {
	store     *Store
	hierarchy driven.TypeHierarchy

	mu    sync.RWMutex
	stage domain.Stage
}

var (
	_ driven.StageSwitcher     = (*ContentStore)(nil)
	_ driven.DependencyTracker = (*ContentStore)(nil)
)

func newContentStore(store *Store, hierarchy driven.TypeHierarchy) *ContentStore {
	return &ContentStore{store: store, hierarchy: hierarchy, stage: domain.StageLive}
}

// UseStage switches the stage that subsequent reads use.
func (c *ContentStore) UseStage(_ context.Context, stage domain.Stage) error {
	if !stage.IsValid() {
		return fmt.Errorf("%w: stage %q", domain.ErrInvalidInput, stage)
	}
	c.mu.Lock()
	c.stage = stage
	c.mu.Unlock()
	return nil
}

// Stage returns the active stage.
func (c *ContentStore) Stage() domain.Stage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stage
}

// SaveRecord creates or replaces a record in its stage. A zero LastEdited
// is set to now.
func (c *ContentStore) SaveRecord(ctx context.Context, doc domain.Document) error {
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
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("marshalling record data: %w", err)
	}
	if string(data) == "null" {
		data = []byte("{}")
	}

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO records (class, id, stage, last_edited, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(class, id, stage) DO UPDATE SET
			last_edited = excluded.last_edited,
			data = excluded.data
	`, doc.SourceClass, doc.RecordID, string(doc.Stage), formatTime(doc.LastEdited), string(data))
	if err != nil {
		return fmt.Errorf("saving record: %w", err)
	}
	return nil
}

// GetRecord retrieves one record. Returns domain.ErrNotFound if missing.
func (c *ContentStore) GetRecord(ctx context.Context, class string, id int64, stage domain.Stage) (*domain.Document, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT class, id, stage, last_edited, data
		FROM records WHERE class = ? AND id = ? AND stage = ?
	`, class, id, string(stage))

	doc, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteRecord removes a record from a stage.
func (c *ContentStore) DeleteRecord(ctx context.Context, class string, id int64, stage domain.Stage) error {
	_, err := c.store.db.ExecContext(ctx,
		"DELETE FROM records WHERE class = ? AND id = ? AND stage = ?", class, id, string(stage))
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// AddDependency records that dependent must be reindexed when dependency
// changes.
func (c *ContentStore) AddDependency(ctx context.Context, dependent, dependency domain.Document) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO record_dependencies (class, record_id, depends_on_class, depends_on_id)
		VALUES (?, ?, ?, ?)
	`, dependent.SourceClass, dependent.RecordID, dependency.SourceClass, dependency.RecordID)
	if err != nil {
		return fmt.Errorf("saving dependency: %w", err)
	}
	return nil
}

// Dependents returns the records of the active stage that depend on any of
// docs, each once.
func (c *ContentStore) Dependents(ctx context.Context, docs []domain.Document) ([]domain.Document, error) {
	stage := c.Stage()
	seen := make(map[string]bool)
	var out []domain.Document

	for start := 0; start < len(docs); start += dependencyQueryChunk {
		end := start + dependencyQueryChunk
		if end > len(docs) {
			end = len(docs)
		}

		clauses := make([]string, 0, end-start)
		args := []any{string(stage)}
		for _, d := range docs[start:end] {
			clauses = append(clauses, "(d.depends_on_class = ? AND d.depends_on_id = ?)")
			args = append(args, d.SourceClass, d.RecordID)
		}

		rows, err := c.store.db.QueryContext(ctx, `
			SELECT DISTINCT r.class, r.id, r.stage, r.last_edited, r.data
			FROM record_dependencies d
			JOIN records r ON r.class = d.class AND r.id = d.record_id AND r.stage = ?
			WHERE `+strings.Join(clauses, " OR ")+`
			ORDER BY r.class, r.id
		`, args...)
		if err != nil {
			return nil, fmt.Errorf("querying dependents: %w", err)
		}
		found, err := scanRecords(rows)
		if err != nil {
			return nil, err
		}
		for _, d := range found {
			if !seen[d.ID] {
				seen[d.ID] = true
				out = append(out, d)
			}
		}
	}
	return out, nil
}

// NewFetcher builds a fetcher over class and its subclasses in the active
// stage, limited to records edited at or before until. It has the shape of
// a fetcher registry factory.
func (c *ContentStore) NewFetcher(_ context.Context, class string, until time.Time) (driven.DocumentFetcher, error) {
	if class == "" {
		return nil, fmt.Errorf("%w: empty class", domain.ErrInvalidInput)
	}
	classes := []string{class}
	if c.hierarchy != nil {
		classes = append(classes, c.hierarchy.Subclasses(class)...)
	}
	return &recordFetcher{
		store:   c.store,
		class:   class,
		classes: classes,
		stage:   c.Stage(),
		until:   until,
	}, nil
}

// recordFetcher pages through records of a class family ordered by id.
type recordFetcher struct {
	store   *Store
	class   string
	classes []string
	stage   domain.Stage
	until   time.Time
}

var _ driven.DocumentFetcher = (*recordFetcher)(nil)

func (f *recordFetcher) Class() string { return f.class }

func (f *recordFetcher) where() (string, []any) {
	args := []any{string(f.stage), formatTime(f.until)}
	for _, c := range f.classes {
		args = append(args, c)
	}
	return "stage = ? AND last_edited <= ? AND class IN (" + placeholders(len(f.classes)) + ")", args
}

// TotalDocuments counts the records the fetcher covers.
func (f *recordFetcher) TotalDocuments(ctx context.Context) (int, error) {
	where, args := f.where()
	var n int
	if err := f.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s records: %w", f.class, err)
	}
	return n, nil
}

// Fetch returns up to limit records starting at offset.
func (f *recordFetcher) Fetch(ctx context.Context, limit, offset int) ([]domain.Document, error) {
	if limit < 1 || offset < 0 {
		return nil, fmt.Errorf("%w: limit %d offset %d", domain.ErrInvalidInput, limit, offset)
	}
	where, args := f.where()
	args = append(args, limit, offset)
	rows, err := f.store.db.QueryContext(ctx, `
		SELECT class, id, stage, last_edited, data FROM records
		WHERE `+where+`
		ORDER BY id, class
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching %s records: %w", f.class, err)
	}
	return scanRecords(rows)
}

func scanRecord(row rowScanner) (*domain.Document, error) {
	var (
		doc        domain.Document
		stage      string
		lastEdited string
		data       string
	)
	if err := row.Scan(&doc.SourceClass, &doc.RecordID, &stage, &lastEdited, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	doc.ID = domain.DocumentID(doc.SourceClass, doc.RecordID)
	doc.Stage = domain.Stage(stage)

	edited, err := parseTime(lastEdited)
	if err != nil {
		return nil, fmt.Errorf("parsing last_edited of %s: %w", doc.ID, err)
	}
	doc.LastEdited = edited

	if err := json.Unmarshal([]byte(data), &doc.Data); err != nil {
		return nil, fmt.Errorf("unmarshalling data of %s: %w", doc.ID, err)
	}
	return &doc, nil
}

func scanRecords(rows *sql.Rows) ([]domain.Document, error) {
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return docs, nil
}
