// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package ycml

import (
	"context"
	"fmt"
	"os"

	"github.com/go-ycloud/ycml-go/assistants"
	"github.com/go-ycloud/ycml-go/auth"
	"github.com/go-ycloud/ycml-go/batch"
	"github.com/go-ycloud/ycml-go/client"
	"github.com/go-ycloud/ycml-go/datasets"
	"github.com/go-ycloud/ycml-go/files"
	"github.com/go-ycloud/ycml-go/models"
	"github.com/go-ycloud/ycml-go/pkg/logging"
	"github.com/go-ycloud/ycml-go/searchindexes"
	"github.com/go-ycloud/ycml-go/threads"
	"github.com/go-ycloud/ycml-go/tuning"
)

// EnvFolderID names the environment variable consulted when no folder ID is
// passed to [New].
const EnvFolderID = "YC_FOLDER_ID"

// SDK bundles every resource service over one authenticated transport.
type SDK struct {
	client   *client.Client
	folderID string

	models        models.Service
	files         files.Service
	assistants    assistants.Service
	threads       threads.Service
	datasets      datasets.Service
	tuning        tuning.Service
	searchIndexes searchindexes.Service
	batch         batch.Service
}

// New builds an SDK for a folder. The credential source comes from
// [WithAuth], [WithAuthString], or — absent both — the environment
// resolution chain; when every source fails the constructor returns
// [auth.ErrNoAuthAvailable].
func New(ctx context.Context, folderID string, opts ...Option) (*SDK, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if folderID == "" {
		folderID = os.Getenv(EnvFolderID)
	}
	if folderID == "" {
		return nil, fmt.Errorf("folder ID is required: pass it to New or set %s", EnvFolderID)
	}

	if cfg.logger != nil {
		ctx = logging.NewContext(ctx, cfg.logger)
	}
	logger := logging.FromContext(ctx)

	source := cfg.source
	if source == nil {
		var resolveOpts []auth.ResolveOption
		if cfg.profile != "" {
			resolveOpts = append(resolveOpts, auth.WithProfile(cfg.profile))
		}
		if cfg.clk != nil {
			resolveOpts = append(resolveOpts, auth.WithResolveClock(cfg.clk))
		}

		var err error
		if cfg.authString != "" {
			source, err = auth.FromString(cfg.authString, resolveOpts...)
		} else {
			source, err = auth.Resolve(ctx, resolveOpts...)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve credentials: %w", err)
		}
	}
	logger.DebugContext(ctx, "credential source selected", "source", source.Name())

	clientOpts := cfg.clientOpts
	if cfg.clk != nil {
		clientOpts = append(clientOpts, client.WithClock(cfg.clk))
	}
	c := client.New(auth.NewAuthenticator(source), clientOpts...)

	return &SDK{
		client:        c,
		folderID:      folderID,
		models:        models.NewService(c, folderID),
		files:         files.NewService(c, folderID),
		assistants:    assistants.NewService(c, folderID),
		threads:       threads.NewService(c, folderID),
		datasets:      datasets.NewService(c, folderID),
		tuning:        tuning.NewService(c, folderID),
		searchIndexes: searchindexes.NewService(c, folderID),
		batch:         batch.NewService(c, folderID),
	}, nil
}

// FolderID returns the folder the SDK operates in.
func (s *SDK) FolderID() string { return s.folderID }

// Client returns the underlying transport.
func (s *SDK) Client() *client.Client { return s.client }

// Models returns the foundation models service.
func (s *SDK) Models() models.Service { return s.models }

// Files returns the file storage service.
func (s *SDK) Files() files.Service { return s.files }

// Assistants returns the assistants service.
func (s *SDK) Assistants() assistants.Service { return s.assistants }

// Threads returns the threads service.
func (s *SDK) Threads() threads.Service { return s.threads }

// Datasets returns the datasets service.
func (s *SDK) Datasets() datasets.Service { return s.datasets }

// Tuning returns the fine-tuning service.
func (s *SDK) Tuning() tuning.Service { return s.tuning }

// SearchIndexes returns the search index service.
func (s *SDK) SearchIndexes() searchindexes.Service { return s.searchIndexes }

// Batch returns the batch inference service.
func (s *SDK) Batch() batch.Service { return s.batch }
