// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/go-ycloud/ycml-go/client"
)

const (
	serviceName = "ai-files"
	basePath    = "/files/v1/files"
)

// File is a stored file's metadata.
type File struct {
	ID        string            `json:"id"`
	FolderID  string            `json:"folderId"`
	Name      string            `json:"name,omitempty"`
	MimeType  string            `json:"mimeType,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	CreatedBy string            `json:"createdBy,omitempty"`
	CreatedAt string            `json:"createdAt,omitempty"`
	ExpiresAt string            `json:"expiresAt,omitempty"`
}

// UploadParams carries the optional metadata of an upload.
type UploadParams struct {
	Name     string
	MimeType string
	Labels   map[string]string

	// TTLDays sets the storage expiration in days; zero keeps the server default.
	TTLDays int64
}

type expirationConfig struct {
	TTLDays int64 `json:"ttlDays,string"`
}

type uploadRequest struct {
	FolderID   string            `json:"folderId"`
	Name       string            `json:"name,omitempty"`
	MimeType   string            `json:"mimeType,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
	Content    string            `json:"content"`
	Expiration *expirationConfig `json:"expirationConfig,omitempty"`
}

type urlResponse struct {
	URL string `json:"url"`
}

// Service provides access to file storage.
type Service interface {
	// Upload stores content and returns the created file's metadata.
	Upload(ctx context.Context, content []byte, params UploadParams) (*File, error)

	// Get fetches a file's metadata.
	Get(ctx context.Context, id string) (*File, error)

	// GetURL returns a short-lived download URL for a file.
	GetURL(ctx context.Context, id string) (string, error)

	// Delete removes a file.
	Delete(ctx context.Context, id string) error
}

type service struct {
	client   *client.Client
	folderID string
}

var _ Service = (*service)(nil)

// NewService returns the file storage service for a folder.
func NewService(c *client.Client, folderID string) Service {
	return &service{client: c, folderID: folderID}
}

// Upload implements [Service]. Content travels base64-encoded in the JSON body.
func (s *service) Upload(ctx context.Context, content []byte, params UploadParams) (*File, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("content cannot be empty")
	}

	req := uploadRequest{
		FolderID: s.folderID,
		Name:     params.Name,
		MimeType: params.MimeType,
		Labels:   params.Labels,
		Content:  base64.StdEncoding.EncodeToString(content),
	}
	if params.TTLDays > 0 {
		req.Expiration = &expirationConfig{TTLDays: params.TTLDays}
	}

	var file File
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodPost,
		Path:    basePath,
		Body:    req,
		Result:  &file,
	})
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	return &file, nil
}

// Get implements [Service].
func (s *service) Get(ctx context.Context, id string) (*File, error) {
	var file File
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       basePath + "/" + id,
		Result:     &file,
		Idempotent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", id, err)
	}
	return &file, nil
}

// GetURL implements [Service].
func (s *service) GetURL(ctx context.Context, id string) (string, error) {
	var resp urlResponse
	err := s.client.Do(ctx, client.Call{
		Service:    serviceName,
		Method:     http.MethodGet,
		Path:       basePath + "/" + id + ":getUrl",
		Result:     &resp,
		Idempotent: true,
	})
	if err != nil {
		return "", fmt.Errorf("get file %s url: %w", id, err)
	}
	return resp.URL, nil
}

// Delete implements [Service].
func (s *service) Delete(ctx context.Context, id string) error {
	err := s.client.Do(ctx, client.Call{
		Service: serviceName,
		Method:  http.MethodDelete,
		Path:    basePath + "/" + id,
	})
	if err != nil {
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	return nil
}
