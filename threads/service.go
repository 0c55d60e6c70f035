// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package threads

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-ycloud/ycml-go/client"
)

const (
	serviceName  = "ai-assistants"
	threadsPath  = "/assistants/v1/threads"
	messagesPath = "/assistants/v1/messages"
)

// Thread is a conversation resource messages are written to.
type Thread struct {
	ID          string            `json:"id"`
	FolderID    string            `json:"folderId"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	ExpiresAt   string            `json:"expiresAt,omitempty"`
}

// ThreadParams carries the optional metadata of a new thread.
type ThreadParams struct {
	Name        string
	Description string
	Labels      map[string]string
}

type createThreadRequest struct {
	FolderID    string            `json:"folderId"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Message is one entry of a thread.
type Message struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	Author   struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"author"`
	Content struct {
		Content []contentPart `json:"content"`
	} `json:"content"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type contentPart struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

// Text joins the textual parts of the message.
func (m *Message) Text() string {
	var out string
	for _, part := range m.Content.Content {
		out += part.Text.Content
	}
	return out
}

type writeMessageRequest struct {
	ThreadID string `json:"threadId"`
	Content  struct {
		Content []contentPart `json:"content"`
	} `json:"content"`
}

type listMessagesResponse struct {
	Messages []Message `json:"messages"`
}

// Service manages threads and their messages.
type Service interface {
	// Create opens a new thread.
	Create(ctx context.Context, params ThreadParams) (*Thread, error)

	// Get fetches a thread.
	Get(ctx context.Context, id string) (*Thread, error)

	// Delete removes a thread and its messages.
	Delete(ctx context.Context, id string) error

	// WriteMessage appends a user text message to a thread.
	WriteMessage(ctx context.Context, threadID, text string) (*Message, error)

	// ListMessages returns the first page of a thread's messages.
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
}

type service struct {
	client   *client.Client
	folderID string
}

var _ Service = (*service)(nil)

// NewService returns the threads service for a folder.
func NewService(c *client.Client, folderID string) Service {
	return &service{client: c, folderID: folderID}
}

func (s *service) Create(ctx context.Context, params ThreadParams) (*Thread, error) {
	var thread Thread
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    threadsPath,
		Body: createThreadRequest{
			FolderID:    s.folderID,
			Name:        params.Name,
			Description: params.Description,
			Labels:      params.Labels,
		},
		Result: &thread,
	})
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	return &thread, nil
}

func (s *service) Get(ctx context.Context, id string) (*Thread, error) {
	var thread Thread
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       threadsPath + "/" + id,
		Result:     &thread,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("get thread %s: %w", id, err)
	}
	return &thread, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodDelete,
		Path:    threadsPath + "/" + id,
	})
	if err != nil {
		return fmt.Errorf("delete thread %s: %w", id, err)
	}
	return nil
}

func (s *service) WriteMessage(ctx context.Context, threadID, text string) (*Message, error) {
	if text == "" {
		return nil, fmt.Errorf("message text cannot be empty")
	}

	req := writeMessageRequest{ThreadID: threadID}
	var part contentPart
	part.Text.Content = text
	req.Content.Content = []contentPart{part}

	var message Message
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    messagesPath,
		Body:    req,
		Result:  &message,
	})
	if err != nil {
		return nil, fmt.Errorf("write message to thread %s: %w", threadID, err)
	}
	return &message, nil
}

func (s *service) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	var resp listMessagesResponse
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       messagesPath,
		Query:      url.Values{"threadId": {threadID}},
		Result:     &resp,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list messages of thread %s: %w", threadID, err)
	}
	return resp.Messages, nil
}
