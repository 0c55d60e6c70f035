// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package assistants

import "github.com/go-ycloud/ycml-go/tools"

// Assistant is a configured assistant resource.
type Assistant struct {
	ID          string            `json:"id"`
	FolderID    string            `json:"folderId"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Instruction string            `json:"instruction,omitempty"`
	ModelURI    string            `json:"modelUri"`
	Labels      map[string]string `json:"labels,omitempty"`
	Tools       []tools.Tool      `json:"tools,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	ExpiresAt   string            `json:"expiresAt,omitempty"`
}

// AssistantParams holds the mutable fields of an assistant. The model URI is
// required on create; zero-valued fields are omitted from update requests.
type AssistantParams struct {
	ModelURI    string
	Name        string
	Description string
	Instruction string
	Labels      map[string]string
	Temperature float64
	MaxTokens   int64

	// Tools equips the assistant, e.g. with search-index retrieval built by
	// [tools.SearchIndex].
	Tools []tools.Tool
}

type completionOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int64   `json:"maxTokens,string,omitempty"`
}

type assistantRequest struct {
	FolderID          string             `json:"folderId,omitempty"`
	ModelURI          string             `json:"modelUri,omitempty"`
	Name              string             `json:"name,omitempty"`
	Description       string             `json:"description,omitempty"`
	Instruction       string             `json:"instruction,omitempty"`
	Labels            map[string]string  `json:"labels,omitempty"`
	Tools             []tools.Tool       `json:"tools,omitempty"`
	CompletionOptions *completionOptions `json:"completionOptions,omitempty"`
	UpdateMask        string             `json:"updateMask,omitempty"`
}

// RunStatus enumerates the lifecycle states of a run.
type RunStatus string

const (
	RunStatusPending    RunStatus = "PENDING"
	RunStatusInProgress RunStatus = "IN_PROGRESS"
	RunStatusFailed     RunStatus = "FAILED"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusToolCalls  RunStatus = "TOOL_CALLS"
)

// Terminal reports whether the status ends the poll loop.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusFailed, RunStatusCompleted, RunStatusToolCalls:
		return true
	}
	return false
}

// RunMessage is the message produced by a completed run.
type RunMessage struct {
	Content struct {
		Content []struct {
			Text struct {
				Content string `json:"content"`
			} `json:"text"`
		} `json:"content"`
	} `json:"content"`
}

// Text joins the textual parts of the message.
func (m *RunMessage) Text() string {
	var out string
	for _, part := range m.Content.Content {
		out += part.Text.Content
	}
	return out
}

// Run is one execution of an assistant over a thread.
type Run struct {
	ID          string `json:"id"`
	AssistantID string `json:"assistantId"`
	ThreadID    string `json:"threadId"`
	State       struct {
		Status       RunStatus   `json:"status"`
		Error        *RunError   `json:"error,omitempty"`
		CompletedMsg *RunMessage `json:"completedMessage,omitempty"`
	} `json:"state"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Status returns the run's current lifecycle state.
func (r *Run) Status() RunStatus { return r.State.Status }

// RunError describes a failed run.
type RunError struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

func (e *RunError) Error() string {
	return e.Message
}

// RunParams overrides generation settings for a single run.
type RunParams struct {
	Temperature float64
	MaxTokens   int64
}

type runRequest struct {
	AssistantID             string             `json:"assistantId"`
	ThreadID                string             `json:"threadId"`
	CustomCompletionOptions *completionOptions `json:"customCompletionOptions,omitempty"`
}
