// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package models

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tiendc/go-deepcopy"

	"github.com/go-ycloud/ycml-go/client"
	"github.com/go-ycloud/ycml-go/pkg/logging"
)

const serviceName = "foundation-models"

// Service provides access to foundation-model inference.
type Service interface {
	// TextGeneration returns a completion handle for the named model.
	TextGeneration(model string) *TextGeneration

	// TextEmbeddings returns an embedding handle for the named model.
	TextEmbeddings(model string) *TextEmbeddings

	// TextClassifier returns a classification handle for the named model.
	TextClassifier(model string) *TextClassifier
}

type service struct {
	client   *client.Client
	folderID string
}

var _ Service = (*service)(nil)

// NewService returns the foundation-models service for a folder.
func NewService(c *client.Client, folderID string) Service {
	return &service{client: c, folderID: folderID}
}

// modelURI expands a bare model name into a full model URI. Names already
// carrying a scheme pass through untouched.
func (s *service) modelURI(scheme, model string) string {
	if strings.Contains(model, "://") {
		return model
	}
	return fmt.Sprintf("%s://%s/%s", scheme, s.folderID, model)
}

// TextGeneration implements [Service].
func (s *service) TextGeneration(model string) *TextGeneration {
	return &TextGeneration{svc: s, modelURI: s.modelURI("gpt", model)}
}

// TextEmbeddings implements [Service].
func (s *service) TextEmbeddings(model string) *TextEmbeddings {
	return &TextEmbeddings{svc: s, modelURI: s.modelURI("emb", model)}
}

// TextClassifier implements [Service].
func (s *service) TextClassifier(model string) *TextClassifier {
	return &TextClassifier{svc: s, modelURI: s.modelURI("cls", model)}
}

// TextGeneration is an immutable handle on one completion model.
type TextGeneration struct {
	svc      *service
	modelURI string
	config   GenerationConfig
}

// URI returns the full model URI the handle addresses.
func (m *TextGeneration) URI() string {
	return m.modelURI
}

// Config returns the handle's generation options.
func (m *TextGeneration) Config() GenerationConfig {
	return m.config
}

// Configure returns a deep copy of the handle with the given options; the
// receiver is left untouched.
func (m *TextGeneration) Configure(config GenerationConfig) *TextGeneration {
	clone := &TextGeneration{svc: m.svc, modelURI: m.modelURI}
	if err := deepcopy.Copy(&clone.config, &config); err != nil {
		// GenerationConfig is a plain value struct; copying it cannot fail.
		panic(fmt.Sprintf("models: clone generation config: %v", err))
	}
	return clone
}

// Run requests one completion for the conversation in messages.
func (m *TextGeneration) Run(ctx context.Context, messages []Message) (*Completion, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}

	logger := logging.FromContext(ctx)
	logger.DebugContext(ctx, "running completion",
		slog.String("model_uri", m.modelURI),
		slog.Int("messages", len(messages)),
	)

	var resp completionResponse
	err := m.svc.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    "/foundationModels/v1/completion",
		Body: completionRequest{
			ModelURI: m.modelURI,
			CompletionOptions: completionOptions{
				Temperature: m.config.Temperature,
				MaxTokens:   m.config.MaxTokens,
			},
			Messages: messages,
		},
		Result: &resp,
	})
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	return &resp.Result, nil
}

// TextEmbeddings is a handle on one embedding model.
type TextEmbeddings struct {
	svc      *service
	modelURI string
}

// Run embeds one text.
func (m *TextEmbeddings) Run(ctx context.Context, text string) (*Embedding, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	var result Embedding
	err := m.svc.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    "/foundationModels/v1/textEmbedding",
		Body: embeddingRequest{
			ModelURI: m.modelURI,
			Text:     text,
		},
		Result:     &result,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("text embedding: %w", err)
	}
	return &result, nil
}

// TextClassifier is a handle on one classification model.
type TextClassifier struct {
	svc      *service
	modelURI string

	taskDescription string
	labels          []string
	samples         []ClassificationSample
}

// ConfigureFewShot returns a copy of the handle set up for few-shot
// classification over the given labels.
func (m *TextClassifier) ConfigureFewShot(taskDescription string, labels []string, samples []ClassificationSample) *TextClassifier {
	clone := &TextClassifier{svc: m.svc, modelURI: m.modelURI, taskDescription: taskDescription}
	if err := deepcopy.Copy(&clone.labels, &labels); err != nil {
		panic(fmt.Sprintf("models: clone labels: %v", err))
	}
	if err := deepcopy.Copy(&clone.samples, &samples); err != nil {
		panic(fmt.Sprintf("models: clone samples: %v", err))
	}
	return clone
}

// Run classifies one text.
func (m *TextClassifier) Run(ctx context.Context, text string) (*ClassificationResult, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	path := "/foundationModels/v1/textClassification"
	if len(m.labels) > 0 {
		path = "/foundationModels/v1/fewShotTextClassification"
	}

	var result ClassificationResult
	err := m.svc.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    path,
		Body: classificationRequest{
			ModelURI:        m.modelURI,
			TaskDescription: m.taskDescription,
			Labels:          m.labels,
			Text:            text,
			Samples:         m.samples,
		},
		Result:     &result,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("text classification: %w", err)
	}
	return &result, nil
}
