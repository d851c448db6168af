// Package logstore persists build-log events in OpenSearch and serves the
// historical read path. The document ID is the event's idempotency key, so a
// redelivered event collapses onto the already-indexed record instead of
// producing a duplicate row.
package logstore

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/skydock-systems/skydock-stack/collector/internal/config"
	"github.com/skydock-systems/skydock-stack/common/models"
)

const defaultQueryLimit = 1000

// Store wraps an OpenSearch index holding one document per persisted log line.
type Store struct {
	client     *opensearch.Client
	index      string
	queryLimit int
}

// NewStore creates a Store and verifies connectivity.
func NewStore(cfg config.OpenSearchConfig) (*Store, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.Insecure,
			},
		},
	}

	osCfg := opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: httpClient.Transport,
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	info, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer info.Body.Close()

	if info.IsError() {
		return nil, fmt.Errorf("opensearch returned error: %s", info.Status())
	}

	limit := cfg.QueryLimit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	return &Store{
		client:     client,
		index:      cfg.IndexName,
		queryLimit: limit,
	}, nil
}

// Initialize creates the index with explicit mappings if it does not exist.
func (s *Store) Initialize(ctx context.Context) error {
	exists, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer exists.Body.Close()

	if exists.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"event_id":      map[string]interface{}{"type": "keyword"},
				"deployment_id": map[string]interface{}{"type": "keyword"},
				"line":          map[string]interface{}{"type": "text"},
				"sequence":      map[string]interface{}{"type": "long"},
				"timestamp":     map[string]interface{}{"type": "date"},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	res, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("failed to create index %s: %s - %s", s.index, res.Status(), string(raw))
	}

	return nil
}

// Persist writes one log record. Returns false without error when the record
// already exists (redelivered event); any other failure is an error and the
// caller must not acknowledge the originating bus message.
func (s *Store) Persist(ctx context.Context, rec *models.LogRecord) (bool, error) {
	doc := map[string]interface{}{
		"event_id":      rec.EventID,
		"deployment_id": rec.DeploymentID,
		"line":          rec.Line,
		"sequence":      rec.Sequence,
		"timestamp":     rec.Timestamp.UTC().Format(time.RFC3339Nano),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("marshal log record: %w", err)
	}

	res, err := s.client.Create(
		s.index,
		rec.EventID,
		bytes.NewReader(body),
		s.client.Create.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("index log record: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusConflict {
		// Document already created by a previous delivery.
		return false, nil
	}

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return false, fmt.Errorf("index log record: %s - %s", res.Status(), string(raw))
	}

	return true, nil
}

// Query returns the persisted log lines for a deployment in publish order,
// bounded by the configured query limit.
func (s *Store) Query(ctx context.Context, deploymentID string) ([]models.LogRecord, error) {
	query := map[string]interface{}{
		"size": s.queryLimit,
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"deployment_id": deploymentID,
			},
		},
		"sort": []map[string]interface{}{
			{"sequence": map[string]interface{}{"order": "asc"}},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search logs: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search logs: %s - %s", res.Status(), string(raw))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.LogRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	records := make([]models.LogRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		records = append(records, hit.Source)
	}
	return records, nil
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping opensearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch returned error: %s", res.Status())
	}
	return nil
}
