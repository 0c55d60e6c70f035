// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package searchindexes

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/go-ycloud/ycml-go/client"
	"github.com/go-ycloud/ycml-go/files"
	"github.com/go-ycloud/ycml-go/pkg/logging"
)

const (
	serviceName = "search-indexes"
	indexesPath = "/assistants/v1/searchIndexes"

	// fileCheckConcurrency bounds the parallel file availability probes that
	// precede an index creation.
	fileCheckConcurrency = 8
)

// IndexType selects the retrieval strategy of an index.
type IndexType string

const (
	IndexTypeText   IndexType = "TEXT_SEARCH_INDEX"
	IndexTypeVector IndexType = "VECTOR_SEARCH_INDEX"
	IndexTypeHybrid IndexType = "HYBRID_SEARCH_INDEX"
)

// SearchIndex describes an index resource.
type SearchIndex struct {
	ID          string            `json:"id"`
	FolderID    string            `json:"folderId"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	ExpiresAt   string            `json:"expiresAt,omitempty"`
}

// CreateParams describes a new index over already-uploaded files.
type CreateParams struct {
	Name        string
	Description string
	Labels      map[string]string

	// Type defaults to IndexTypeText when empty.
	Type IndexType
}

type createRequest struct {
	FolderID    string            `json:"folderId"`
	FileIDs     []string          `json:"fileIds"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	IndexType   IndexType         `json:"indexType,omitempty"`
}

type addFilesRequest struct {
	FileIDs []string `json:"fileIds"`
}

// Deferred tracks an index creation in flight.
type Deferred struct {
	client *client.Client
	op     *client.Operation
}

// OperationID identifies the backing long-running operation.
func (d *Deferred) OperationID() string { return d.op.ID }

// Wait blocks until the creation finishes and returns the index.
func (d *Deferred) Wait(ctx context.Context) (*SearchIndex, error) {
	op, err := d.client.WaitOperation(ctx, d.op.ID, client.DefaultPollInterval)
	if err != nil {
		return nil, fmt.Errorf("wait index creation: %w", err)
	}
	var idx SearchIndex
	if err := op.UnmarshalResponse(&idx); err != nil {
		return nil, fmt.Errorf("decode search index: %w", err)
	}
	return &idx, nil
}

// Service manages search indexes.
type Service interface {
	// CreateDeferred builds an index over the given files. Every file is
	// checked for availability first; a missing file fails the call before
	// the index request is sent.
	CreateDeferred(ctx context.Context, fileIDs []string, params CreateParams) (*Deferred, error)

	// Get fetches an index.
	Get(ctx context.Context, id string) (*SearchIndex, error)

	// AddFiles extends an existing index with more files.
	AddFiles(ctx context.Context, id string, fileIDs []string) error
}

type service struct {
	client   *client.Client
	files    files.Service
	folderID string
}

var _ Service = (*service)(nil)

// NewService returns the search index service for a folder.
func NewService(c *client.Client, folderID string) Service {
	return &service{
		client:   c,
		files:    files.NewService(c, folderID),
		folderID: folderID,
	}
}

func (s *service) CreateDeferred(ctx context.Context, fileIDs []string, params CreateParams) (*Deferred, error) {
	if len(fileIDs) == 0 {
		return nil, fmt.Errorf("at least one file is required")
	}
	if err := s.checkFiles(ctx, fileIDs); err != nil {
		return nil, err
	}

	var op client.Operation
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    indexesPath,
		Body: createRequest{
			FolderID:    s.folderID,
			FileIDs:     fileIDs,
			Name:        params.Name,
			Description: params.Description,
			Labels:      params.Labels,
			IndexType:   params.Type,
		},
		Result: &op,
	})
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	logging.FromContext(ctx).DebugContext(ctx, "search index creation started",
		"operation_id", op.ID, "files", len(fileIDs))
	return &Deferred{client: s.client, op: &op}, nil
}

func (s *service) Get(ctx context.Context, id string) (*SearchIndex, error) {
	var idx SearchIndex
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       indexesPath + "/" + id,
		Result:     &idx,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("get search index %s: %w", id, err)
	}
	return &idx, nil
}

func (s *service) AddFiles(ctx context.Context, id string, fileIDs []string) error {
	if len(fileIDs) == 0 {
		return fmt.Errorf("at least one file is required")
	}
	if err := s.checkFiles(ctx, fileIDs); err != nil {
		return err
	}

	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    indexesPath + "/" + id + ":addFiles",
		Body:    addFilesRequest{FileIDs: fileIDs},
	})
	if err != nil {
		return fmt.Errorf("add files to search index %s: %w", id, err)
	}
	return nil
}

// checkFiles verifies that every file exists before the index call touches
// them. Checks run in parallel; the first failure cancels the rest.
func (s *service) checkFiles(ctx context.Context, fileIDs []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fileCheckConcurrency)
	for _, id := range fileIDs {
		id := id
		g.Go(func() error {
			if _, err := s.files.Get(ctx, id); err != nil {
				return fmt.Errorf("file %s is not available: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}
