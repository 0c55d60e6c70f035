// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-ycloud/ycml-go/client"
)

const (
	serviceName = "batch-inference"
	tasksPath   = "/batch/v1/tasks"

	// DefaultPollInterval is the poll period of Wait.
	DefaultPollInterval = 30 * time.Second
)

// Status enumerates the lifecycle states of a batch task.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCanceled   Status = "CANCELED"
)

// Terminal reports whether the status ends a poll loop.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Task describes a batch inference task.
type Task struct {
	ID              string `json:"taskId"`
	FolderID        string `json:"folderId"`
	ModelURI        string `json:"modelUri,omitempty"`
	SourceDatasetID string `json:"sourceDatasetId,omitempty"`
	ResultDatasetID string `json:"resultDatasetId,omitempty"`
	Status          Status `json:"status"`
	CompletedJobs   int64  `json:"completedJobsCount,string,omitempty"`
	TotalJobs       int64  `json:"totalJobsCount,string,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

// RunParams describes a batch inference submission.
type RunParams struct {
	ModelURI  string
	DatasetID string
	Labels    map[string]string
}

type runRequest struct {
	FolderID        string            `json:"folderId"`
	ModelURI        string            `json:"modelUri"`
	SourceDatasetID string            `json:"sourceDatasetId"`
	Labels          map[string]string `json:"labels,omitempty"`
}

type listResponse struct {
	Tasks []Task `json:"tasks"`
}

// Deferred tracks a batch task in flight.
type Deferred struct {
	svc    *service
	TaskID string
}

// Wait polls the task until it reaches a terminal status. A completed task
// carries the dataset ID its results were written to.
func (d *Deferred) Wait(ctx context.Context) (*Task, error) {
	clk := d.svc.client.Clock()
	for {
		task, err := d.svc.Get(ctx, d.TaskID)
		if err != nil {
			return nil, err
		}
		if task.Status.Terminal() {
			if task.Status != StatusCompleted {
				return task, fmt.Errorf("batch task %s finished as %s", d.TaskID, task.Status)
			}
			return task, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait batch task %s: %w", d.TaskID, ctx.Err())
		case <-clk.After(DefaultPollInterval):
		}
	}
}

// Service manages batch inference tasks.
type Service interface {
	// Run submits batch inference of a model over a source dataset. The task
	// runs server-side; use the returned handle to wait for the result
	// dataset.
	Run(ctx context.Context, params RunParams) (*Deferred, error)

	// Get fetches a batch task.
	Get(ctx context.Context, taskID string) (*Task, error)

	// Cancel stops a running batch task.
	Cancel(ctx context.Context, taskID string) error

	// List returns the first page of the folder's batch tasks.
	List(ctx context.Context) ([]Task, error)
}

type service struct {
	client   *client.Client
	folderID string
}

var _ Service = (*service)(nil)

// NewService returns the batch inference service for a folder.
func NewService(c *client.Client, folderID string) Service {
	return &service{client: c, folderID: folderID}
}

func (s *service) Run(ctx context.Context, params RunParams) (*Deferred, error) {
	if params.ModelURI == "" {
		return nil, fmt.Errorf("model URI is required")
	}
	if params.DatasetID == "" {
		return nil, fmt.Errorf("source dataset is required")
	}

	var task Task
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    tasksPath,
		Body: runRequest{
			FolderID:        s.folderID,
			ModelURI:        params.ModelURI,
			SourceDatasetID: params.DatasetID,
			Labels:          params.Labels,
		},
		Result: &task,
	})
	if err != nil {
		return nil, fmt.Errorf("run batch task: %w", err)
	}
	return &Deferred{svc: s, TaskID: task.ID}, nil
}

func (s *service) Get(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       tasksPath + "/" + taskID,
		Result:     &task,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("get batch task %s: %w", taskID, err)
	}
	return &task, nil
}

func (s *service) Cancel(ctx context.Context, taskID string) error {
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    tasksPath + "/" + taskID + ":cancel",
	})
	if err != nil {
		return fmt.Errorf("cancel batch task %s: %w", taskID, err)
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]Task, error) {
	var resp listResponse
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       tasksPath,
		Query:      url.Values{"folderId": {s.folderID}},
		Result:     &resp,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list batch tasks: %w", err)
	}
	return resp.Tasks, nil
}
