// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package datasets manages training and evaluation datasets.
package datasets
