// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package files exposes the file storage service backing assistants and
// search indexes.
package files
