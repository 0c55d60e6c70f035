// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch runs deferred batch inference over datasets.
package batch
