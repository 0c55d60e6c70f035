// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package assistants manages assistants and executes runs against threads.
package assistants
