// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package datasets

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-ycloud/ycml-go/client"
)

const (
	serviceName  = "datasets"
	datasetsPath = "/datasets/v1/datasets"
)

// Status enumerates the lifecycle states of a dataset.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusValidating Status = "VALIDATING"
	StatusReady      Status = "READY"
	StatusInvalid    Status = "INVALID"
	StatusDeleting   Status = "DELETING"
)

// Dataset describes a stored dataset.
type Dataset struct {
	ID           string            `json:"datasetId"`
	FolderID     string            `json:"folderId"`
	Name         string            `json:"name,omitempty"`
	Status       Status            `json:"status"`
	TaskType     string            `json:"taskType,omitempty"`
	UploadFormat string            `json:"uploadFormat,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
	Rows         int64             `json:"rows,string,omitempty"`
	SizeBytes    int64             `json:"sizeBytes,string,omitempty"`
	CreatedAt    string            `json:"createdAt,omitempty"`
}

// DraftParams describes a dataset draft. TaskType and UploadFormat are
// required by the backend before any data can be attached.
type DraftParams struct {
	Name         string
	TaskType     string
	UploadFormat string
	Labels       map[string]string
}

type createRequest struct {
	FolderID     string            `json:"folderId"`
	Name         string            `json:"name,omitempty"`
	TaskType     string            `json:"taskType"`
	UploadFormat string            `json:"uploadFormat"`
	Labels       map[string]string `json:"labels,omitempty"`
}

// Deferred tracks a dataset creation in flight.
type Deferred struct {
	client *client.Client
	op     *client.Operation
}

// OperationID identifies the backing long-running operation.
func (d *Deferred) OperationID() string { return d.op.ID }

// Wait blocks until the creation finishes and returns the dataset.
func (d *Deferred) Wait(ctx context.Context) (*Dataset, error) {
	op, err := d.client.WaitOperation(ctx, d.op.ID, client.DefaultPollInterval)
	if err != nil {
		return nil, fmt.Errorf("wait dataset creation: %w", err)
	}
	var ds Dataset
	if err := op.UnmarshalResponse(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}

// Service manages datasets.
type Service interface {
	// CreateDeferred registers a dataset draft. Creation runs server-side as a
	// long-running operation; use the returned handle to wait for the result.
	CreateDeferred(ctx context.Context, params DraftParams) (*Deferred, error)

	// Get fetches a dataset.
	Get(ctx context.Context, id string) (*Dataset, error)

	// Delete removes a dataset.
	Delete(ctx context.Context, id string) error
}

type service struct {
	client   *client.Client
	folderID string
}

var _ Service = (*service)(nil)

// NewService returns the datasets service for a folder.
func NewService(c *client.Client, folderID string) Service {
	return &service{client: c, folderID: folderID}
}

func (s *service) CreateDeferred(ctx context.Context, params DraftParams) (*Deferred, error) {
	if params.TaskType == "" {
		return nil, fmt.Errorf("task type is required")
	}
	if params.UploadFormat == "" {
		return nil, fmt.Errorf("upload format is required")
	}

	var op client.Operation
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    datasetsPath,
		Body: createRequest{
			FolderID:     s.folderID,
			Name:         params.Name,
			TaskType:     params.TaskType,
			UploadFormat: params.UploadFormat,
			Labels:       params.Labels,
		},
		Result: &op,
	})
	if err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}
	return &Deferred{client: s.client, op: &op}, nil
}

func (s *service) Get(ctx context.Context, id string) (*Dataset, error) {
	var ds Dataset
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       datasetsPath + "/" + id,
		Result:     &ds,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("get dataset %s: %w", id, err)
	}
	return &ds, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodDelete,
		Path:    datasetsPath + "/" + id,
	})
	if err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}
	return nil
}
