// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools builds the tool declarations an assistant can be equipped
// with. A tool is configuration, not a resource: constructing one performs no
// API calls.
package tools
