// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package tuning manages model fine-tuning tasks.
package tuning
