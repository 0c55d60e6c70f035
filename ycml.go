// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package ycml is a Go SDK for Yandex Cloud ML services: text generation,
// embeddings, classifiers, assistants, threads, file storage, search
// indexes, dataset management, fine-tuning, and batch inference.
//
// Construction resolves a credential source from explicit options or the
// environment and binds every resource service to one authenticated
// transport:
//
//	sdk, err := ycml.New(ctx, "b1gexample")
//	if err != nil { ... }
//	result, err := sdk.Models().TextGeneration("yandexgpt").Run(ctx, msgs)
package ycml

// Version is the version of the SDK.
var Version = "v0.0.0"
