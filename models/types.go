// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package models

// Message is one turn of a completion conversation.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Message roles accepted by the completion endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerationConfig holds the tunable completion options.
type GenerationConfig struct {
	// Temperature controls sampling randomness; zero picks the most likely tokens.
	Temperature float64

	// MaxTokens bounds the completion length; zero leaves the server default.
	MaxTokens int64
}

// completionOptions is the wire form of [GenerationConfig].
type completionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int64   `json:"maxTokens,omitempty,string"`
}

type completionRequest struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions completionOptions `json:"completionOptions"`
	Messages          []Message         `json:"messages"`
}

type completionResponse struct {
	Result Completion `json:"result"`
}

// Completion is the result of one completion call.
type Completion struct {
	Alternatives []Alternative `json:"alternatives"`
	Usage        Usage         `json:"usage"`
	ModelVersion string        `json:"modelVersion"`
}

// Text returns the text of the first alternative, the common case.
func (c *Completion) Text() string {
	if len(c.Alternatives) == 0 {
		return ""
	}
	return c.Alternatives[0].Message.Text
}

// Alternative is one generated answer.
type Alternative struct {
	Message Message `json:"message"`
	Status  string  `json:"status"`
}

// Usage reports token accounting for a call.
type Usage struct {
	InputTextTokens  int64 `json:"inputTextTokens,string"`
	CompletionTokens int64 `json:"completionTokens,string"`
	TotalTokens      int64 `json:"totalTokens,string"`
}

type embeddingRequest struct {
	ModelURI string `json:"modelUri"`
	Text     string `json:"text"`
}

// Embedding is a vector representation of a text.
type Embedding struct {
	Embedding    []float64 `json:"embedding"`
	NumTokens    int64     `json:"numTokens,string"`
	ModelVersion string    `json:"modelVersion"`
}

// ClassificationSample is a labeled example for few-shot classification.
type ClassificationSample struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

type classificationRequest struct {
	ModelURI        string                 `json:"modelUri"`
	TaskDescription string                 `json:"taskDescription,omitempty"`
	Labels          []string               `json:"labels,omitempty"`
	Text            string                 `json:"text"`
	Samples         []ClassificationSample `json:"samples,omitempty"`
}

// ClassificationResult is the label distribution predicted for a text.
type ClassificationResult struct {
	Predictions  []Prediction `json:"predictions"`
	ModelVersion string       `json:"modelVersion"`
}

// Prediction is one label with its confidence.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}
