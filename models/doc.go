// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package models exposes the foundation-model inference services: text
// completion, text embeddings, and text classification.
//
// Model handles are immutable: Configure returns a deep copy with the new
// generation options, so a handle can be shared between goroutines and
// reconfigured locally without affecting other holders.
package models
