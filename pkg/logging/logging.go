// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging provides context-based structured logging for the SDK using [log/slog].
//
// A [*slog.Logger] is carried in a [context.Context] so that every layer of the
// SDK (credential resolution, transport, resource services) logs through the
// logger configured by the host application:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	ctx := logging.NewContext(ctx, logger)
//	sdk, err := ycml.New(ctx, folderID)
//
// When no logger is present in the context, [FromContext] falls back to
// [slog.DiscardHandler], so the SDK stays silent unless a logger is provided.
//
// Credential values are never logged: the auth package's Credential type
// redacts itself in all formatting verbs.
package logging

import (
	"context"
	"log/slog"
)

// discardHandler mirrors [slog.DiscardHandler], which was added in Go 1.24,
// for toolchains that predate it: it discards all log output.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// contextKey is how we find [*slog.Logger] in a [context.Context].
type contextKey struct{}

// NewContext returns a new [context.Context], derived from ctx, which carries the provided [*slog.Logger].
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the [*slog.Logger] carried by ctx.
//
// If no [*slog.Logger] is found, this returns a logger with
// [slog.DiscardHandler]: a library must not write to the host process's
// streams unless asked to.
func FromContext(ctx context.Context) *slog.Logger {
	if v := ctx.Value(contextKey{}); v != nil {
		return v.(*slog.Logger)
	}
	return slog.New(discardHandler{})
}
