// Package httpindex implements driven.IndexingService against a JSON HTTP
// search backend.
//
// Endpoints, relative to the base URL and per environment index name:
//
//	POST /indexes/{index}/documents          add or replace documents
//	POST /indexes/{index}/documents/delete   remove documents by id
//	PUT  /indexes/{index}/settings           push the field configuration
package httpindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/searchsync/internal/adapters/driven/indexing"
	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
	"github.com/custodia-labs/searchsync/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.IndexingService = (*Client)(nil)

// Config configures the HTTP backend.
type Config struct {
	// BaseURL is the backend root, e.g. https://search.example.com/api.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout bounds each request. Zero means 30 seconds.
	Timeout time.Duration

	// RateLimit throttles requests. Zero value uses DefaultRateLimit.
	RateLimit RateLimitConfig
}

// Client pushes documents and settings to the backend.
type Client struct {
	base    *url.URL
	apiKey  string
	http    *http.Client
	limiter *rateLimiter
	schema  indexing.Schema
}

// New creates a client. The schema decides index membership and fields.
func New(cfg Config, schema indexing.Schema) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: backend url is required", domain.ErrInvalidInput)
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid backend url %q", domain.ErrInvalidInput, cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:    base,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		limiter: newRateLimiter(cfg.RateLimit),
		schema:  schema,
	}, nil
}

type documentsRequest struct {
	Documents []map[string]any `json:"documents"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

type fieldSetting struct {
	Name     string         `json:"name"`
	Property string         `json:"property"`
	Options  map[string]any `json:"options,omitempty"`
}

type settingsRequest struct {
	IDField          string         `json:"id_field"`
	SourceClassField string         `json:"source_class_field"`
	Fields           []fieldSetting `json:"fields"`
}

// AddDocuments renders docs and posts them to every index they belong to.
func (c *Client) AddDocuments(ctx context.Context, docs []domain.Document) error {
	groups := indexing.GroupByIndex(c.schema, docs)
	for _, index := range indexing.SortedKeys(groups) {
		body := documentsRequest{Documents: make([]map[string]any, 0, len(groups[index]))}
		for _, d := range groups[index] {
			body.Documents = append(body.Documents, indexing.Render(c.schema, d))
		}
		if err := c.do(ctx, http.MethodPost, indexPath(index, "documents"), body); err != nil {
			return err
		}
		logger.Debug("Sent %d documents to %s", len(body.Documents), index)
	}
	return nil
}

// RemoveDocuments deletes docs by id from every index they belong to.
func (c *Client) RemoveDocuments(ctx context.Context, docs []domain.Document) error {
	groups := indexing.GroupByIndex(c.schema, docs)
	for _, index := range indexing.SortedKeys(groups) {
		body := deleteRequest{IDs: make([]string, 0, len(groups[index]))}
		for _, d := range groups[index] {
			body.IDs = append(body.IDs, d.ID)
		}
		if err := c.do(ctx, http.MethodPost, indexPath(index, "documents", "delete"), body); err != nil {
			return err
		}
		logger.Debug("Removed %d documents from %s", len(body.IDs), index)
	}
	return nil
}

// Configure pushes the field configuration of every index.
func (c *Client) Configure(ctx context.Context) error {
	for _, def := range c.schema.Indexes() {
		body := settingsRequest{
			IDField:          c.schema.IDField(),
			SourceClassField: c.schema.SourceClassField(),
			Fields:           []fieldSetting{},
		}
		for _, f := range indexing.FieldList(c.schema, def.Name) {
			body.Fields = append(body.Fields, fieldSetting{Name: f.Name, Property: f.Property, Options: f.Options})
		}
		index := c.schema.EnvironmentIndexName(def.Name)
		if err := c.do(ctx, http.MethodPut, indexPath(index, "settings"), body); err != nil {
			return err
		}
		logger.Info("Configured index %s (%d fields)", index, len(body.Fields))
	}
	return nil
}

func indexPath(index string, parts ...string) string {
	return "/indexes/" + url.PathEscape(index) + "/" + strings.Join(parts, "/")
}

// do sends one JSON request. Non-2xx responses are ErrIndexingService;
// a 429 also opens a backoff window for later requests.
func (c *Client) do(ctx context.Context, method, path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrIndexingService, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		seconds, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		c.limiter.Backoff(time.Duration(seconds) * time.Second)
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrIndexingService, method, path,
		resp.StatusCode, strings.TrimSpace(string(msg)))
}
