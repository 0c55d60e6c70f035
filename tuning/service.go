// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package tuning

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-ycloud/ycml-go/client"
)

const (
	serviceName = "tuning"
	tuningPath  = "/tuning/v1/tuning"

	// DefaultPollInterval is the poll period of WaitTask. Tuning tasks run for
	// minutes to hours, so the period is much longer than an operation poll.
	DefaultPollInterval = 30 * time.Second
)

// Status enumerates the lifecycle states of a tuning task.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusDraft      Status = "DRAFT"
)

// Terminal reports whether the status ends a poll loop.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task describes a fine-tuning task.
type Task struct {
	ID             string `json:"taskId"`
	FolderID       string `json:"folderId"`
	Status         Status `json:"status"`
	SourceModelURI string `json:"sourceModelUri,omitempty"`
	TargetModelURI string `json:"targetModelUri,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// WeightedDataset pairs a dataset with its sampling weight.
type WeightedDataset struct {
	DatasetID string  `json:"datasetId"`
	Weight    float64 `json:"weight,omitempty"`
}

// TuneParams describes a new tuning task over a base model.
type TuneParams struct {
	ModelURI           string
	TrainDatasets      []WeightedDataset
	ValidationDatasets []WeightedDataset
	Labels             map[string]string
}

type tuneRequest struct {
	FolderID           string            `json:"folderId"`
	BaseModelURI       string            `json:"baseModelUri"`
	TrainDatasets      []WeightedDataset `json:"trainDatasets"`
	ValidationDatasets []WeightedDataset `json:"validationDatasets,omitempty"`
	Labels             map[string]string `json:"labels,omitempty"`
}

// Deferred tracks a tuning task submission in flight.
type Deferred struct {
	svc    *service
	TaskID string
}

// Wait polls the task until it reaches a terminal status. A FAILED task
// surfaces as an error; a COMPLETED one carries its tuned model URI.
func (d *Deferred) Wait(ctx context.Context) (*Task, error) {
	return d.svc.waitTask(ctx, d.TaskID)
}

// Service manages tuning tasks.
type Service interface {
	// CreateDeferred submits a tuning task over train datasets. The task runs
	// server-side; use the returned handle to wait for the tuned model.
	CreateDeferred(ctx context.Context, params TuneParams) (*Deferred, error)

	// Get fetches a tuning task.
	Get(ctx context.Context, taskID string) (*Task, error)

	// Cancel stops a running tuning task.
	Cancel(ctx context.Context, taskID string) error
}

type service struct {
	client   *client.Client
	folderID string
}

var _ Service = (*service)(nil)

// NewService returns the tuning service for a folder.
func NewService(c *client.Client, folderID string) Service {
	return &service{client: c, folderID: folderID}
}

func (s *service) CreateDeferred(ctx context.Context, params TuneParams) (*Deferred, error) {
	if params.ModelURI == "" {
		return nil, fmt.Errorf("model URI is required")
	}
	if len(params.TrainDatasets) == 0 {
		return nil, fmt.Errorf("at least one train dataset is required")
	}

	var task Task
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    tuningPath,
		Body: tuneRequest{
			FolderID:           s.folderID,
			BaseModelURI:       params.ModelURI,
			TrainDatasets:      params.TrainDatasets,
			ValidationDatasets: params.ValidationDatasets,
			Labels:             params.Labels,
		},
		Result: &task,
	})
	if err != nil {
		return nil, fmt.Errorf("create tuning task: %w", err)
	}
	return &Deferred{svc: s, TaskID: task.ID}, nil
}

func (s *service) Get(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       tuningPath + "/" + taskID,
		Result:     &task,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("get tuning task %s: %w", taskID, err)
	}
	return &task, nil
}

func (s *service) Cancel(ctx context.Context, taskID string) error {
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    tuningPath + "/" + taskID + ":cancel",
	})
	if err != nil {
		return fmt.Errorf("cancel tuning task %s: %w", taskID, err)
	}
	return nil
}

func (s *service) waitTask(ctx context.Context, taskID string) (*Task, error) {
	clk := s.client.Clock()
	for {
		task, err := s.Get(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if task.Status.Terminal() {
			if task.Status == StatusFailed {
				return task, fmt.Errorf("tuning task %s failed", taskID)
			}
			if task.TargetModelURI == "" {
				return task, fmt.Errorf("tuning task %s completed without a model URI", taskID)
			}
			return task, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait tuning task %s: %w", taskID, ctx.Err())
		case <-clk.After(DefaultPollInterval):
		}
	}
}
