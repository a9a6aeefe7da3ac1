package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// stateVersion tags the encoding of persisted job state.
const stateVersion = 1

// jobStore implements driven.ReindexJobStore.
type jobStore struct {
	store *Store
}

var _ driven.ReindexJobStore = (*jobStore)(nil)

type stateBlob struct {
	Version int                 `msgpack:"v"`
	State   domain.ReindexState `msgpack:"state"`
}

// Save creates or replaces the state keyed by JobID.
func (s *jobStore) Save(ctx context.Context, state domain.ReindexState) error {
	if state.JobID == "" {
		return fmt.Errorf("%w: job state has no id", domain.ErrInvalidInput)
	}

	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = now
	}

	blob, err := encodeState(state)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO reindex_jobs (id, status, is_complete, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			is_complete = excluded.is_complete,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, state.JobID, string(state.Status), boolToInt(state.IsComplete), blob,
		formatTime(state.CreatedAt), formatTime(state.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving job state: %w", err)
	}
	return nil
}

// Get retrieves a job's state.
func (s *jobStore) Get(ctx context.Context, jobID string) (*domain.ReindexState, error) {
	var blob []byte
	err := s.store.db.QueryRowContext(ctx, "SELECT state FROM reindex_jobs WHERE id = ?", jobID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying job state: %w", err)
	}

	state, err := decodeState(blob)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", jobID, err)
	}
	return &state, nil
}

// List returns all jobs, most recently updated first.
func (s *jobStore) List(ctx context.Context) ([]domain.ReindexState, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT id, state FROM reindex_jobs ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("querying job states: %w", err)
	}
	defer rows.Close()

	var states []domain.ReindexState //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			id   string
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning job state: %w", err)
		}
		state, err := decodeState(blob)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", id, err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job states: %w", err)
	}
	return states, nil
}

// Delete removes a job's state.
func (s *jobStore) Delete(ctx context.Context, jobID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM reindex_jobs WHERE id = ?", jobID); err != nil {
		return fmt.Errorf("deleting job state: %w", err)
	}
	return nil
}

// encodeState serialises state as an lz4 frame holding MessagePack.
func encodeState(state domain.ReindexState) ([]byte, error) {
	packed, err := msgpack.Marshal(stateBlob{Version: stateVersion, State: state})
	if err != nil {
		return nil, fmt.Errorf("encoding job state: %w", err)
	}

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(packed); err != nil {
		return nil, fmt.Errorf("compressing job state: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compressing job state: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeState(blob []byte) (domain.ReindexState, error) {
	packed, err := io.ReadAll(lz4.NewReader(bytes.NewReader(blob)))
	if err != nil {
		return domain.ReindexState{}, fmt.Errorf("decompressing job state: %w", err)
	}

	var decoded stateBlob
	if err := msgpack.Unmarshal(packed, &decoded); err != nil {
		return domain.ReindexState{}, fmt.Errorf("decoding job state: %w", err)
	}
	if decoded.Version != stateVersion {
		return domain.ReindexState{}, fmt.Errorf("unsupported job state version %d", decoded.Version)
	}
	return decoded.State, nil
}
