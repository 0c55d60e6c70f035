// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package client implements the HTTP transport shared by all resource
// services: per-service endpoint mapping, request identification, credential
// attachment through the auth package, retry of transient failures, and the
// transport-level error taxonomy.
//
// Authentication errors surface as the auth package's errors before any
// network I/O; server rejections and network failures surface as [*APIError]
// wrapping the package's sentinel errors, so callers can always tell "could
// not authenticate", "server rejected the request", and "network unreachable"
// apart.
package client
