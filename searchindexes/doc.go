// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package searchindexes manages search indexes built over stored files.
package searchindexes
