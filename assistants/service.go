// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package assistants

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-ycloud/ycml-go/client"
	"github.com/go-ycloud/ycml-go/pkg/logging"
)

const (
	serviceName    = "ai-assistants"
	assistantsPath = "/assistants/v1/assistants"
	runsPath       = "/assistants/v1/runs"

	// DefaultListenInterval is the poll period of ListenRun.
	DefaultListenInterval = 500 * time.Millisecond
)

// Service manages assistants and their runs.
type Service interface {
	// Create registers a new assistant. params.ModelURI is required.
	Create(ctx context.Context, params AssistantParams) (*Assistant, error)

	// Get fetches an assistant.
	Get(ctx context.Context, id string) (*Assistant, error)

	// Update patches the non-zero fields of params onto an assistant.
	Update(ctx context.Context, id string, params AssistantParams) (*Assistant, error)

	// Delete removes an assistant.
	Delete(ctx context.Context, id string) error

	// Run starts an execution of an assistant over a thread.
	Run(ctx context.Context, assistantID, threadID string, params RunParams) (*Run, error)

	// GetRun fetches the current state of a run.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListenRun polls a run until it reaches a terminal status or ctx ends.
	// A FAILED run surfaces as a *RunError.
	ListenRun(ctx context.Context, id string) (*Run, error)
}

type service struct {
	client   *client.Client
	folderID string
}

var _ Service = (*service)(nil)

// NewService returns the assistants service for a folder.
func NewService(c *client.Client, folderID string) Service {
	return &service{client: c, folderID: folderID}
}

func (s *service) Create(ctx context.Context, params AssistantParams) (*Assistant, error) {
	if params.ModelURI == "" {
		return nil, fmt.Errorf("model URI is required")
	}

	var assistant Assistant
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    assistantsPath,
		Body: assistantRequest{
			FolderID:          s.folderID,
			ModelURI:          params.ModelURI,
			Name:              params.Name,
			Description:       params.Description,
			Instruction:       params.Instruction,
			Labels:            params.Labels,
			Tools:             params.Tools,
			CompletionOptions: params.completionOptions(),
		},
		Result: &assistant,
	})
	if err != nil {
		return nil, fmt.Errorf("create assistant: %w", err)
	}
	logging.FromContext(ctx).DebugContext(ctx, "assistant created",
		"assistant_id", assistant.ID)
	return &assistant, nil
}

func (s *service) Get(ctx context.Context, id string) (*Assistant, error) {
	var assistant Assistant
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       assistantsPath + "/" + id,
		Result:     &assistant,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("get assistant %s: %w", id, err)
	}
	return &assistant, nil
}

func (s *service) Update(ctx context.Context, id string, params AssistantParams) (*Assistant, error) {
	req := assistantRequest{
		ModelURI:          params.ModelURI,
		Name:              params.Name,
		Description:       params.Description,
		Instruction:       params.Instruction,
		Labels:            params.Labels,
		Tools:             params.Tools,
		CompletionOptions: params.completionOptions(),
		UpdateMask:        params.updateMask(),
	}

	var assistant Assistant
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPatch,
		Path:    assistantsPath + "/" + id,
		Body:    req,
		Result:  &assistant,
	})
	if err != nil {
		return nil, fmt.Errorf("update assistant %s: %w", id, err)
	}
	return &assistant, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodDelete,
		Path:    assistantsPath + "/" + id,
	})
	if err != nil {
		return fmt.Errorf("delete assistant %s: %w", id, err)
	}
	return nil
}

func (s *service) Run(ctx context.Context, assistantID, threadID string, params RunParams) (*Run, error) {
	req := runRequest{AssistantID: assistantID, ThreadID: threadID}
	if params.Temperature != 0 || params.MaxTokens != 0 {
		req.CustomCompletionOptions = &completionOptions{
			Temperature: params.Temperature,
			MaxTokens:   params.MaxTokens,
		}
	}

	var run Run
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    runsPath,
		Body:    req,
		Result:  &run,
	})
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	return &run, nil
}

func (s *service) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       runsPath + "/" + id,
		Result:     &run,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

func (s *service) ListenRun(ctx context.Context, id string) (*Run, error) {
	clk := s.client.Clock()
	for {
		run, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		if run.Status().Terminal() {
			if run.State.Error != nil {
				return run, fmt.Errorf("run %s: %w", id, run.State.Error)
			}
			return run, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("listen run %s: %w", id, ctx.Err())
		case <-clk.After(DefaultListenInterval):
		}
	}
}

// completionOptions returns the generation overrides, or nil when the params
// leave them at server defaults.
func (p AssistantParams) completionOptions() *completionOptions {
	if p.Temperature == 0 && p.MaxTokens == 0 {
		return nil
	}
	return &completionOptions{Temperature: p.Temperature, MaxTokens: p.MaxTokens}
}

// updateMask lists the fields an update request carries, in the wire's
// camelCase form.
func (p AssistantParams) updateMask() string {
	var fields []string
	if p.ModelURI != "" {
		fields = append(fields, "modelUri")
	}
	if p.Name != "" {
		fields = append(fields, "name")
	}
	if p.Description != "" {
		fields = append(fields, "description")
	}
	if p.Instruction != "" {
		fields = append(fields, "instruction")
	}
	if p.Labels != nil {
		fields = append(fields, "labels")
	}
	if p.Tools != nil {
		fields = append(fields, "tools")
	}
	if p.Temperature != 0 || p.MaxTokens != 0 {
		fields = append(fields, "completionOptions")
	}
	return strings.Join(fields, ",")
}
