// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth implements credential resolution and refresh for the SDK.
//
// A [Credential] is an immutable secret value with a kind (API key, IAM token,
// OAuth token, or none) and an optional expiry. Credentials are produced by
// [CredentialSource] implementations:
//
//   - a static source holding an explicit, pre-classified value
//   - an environment-variable source re-read on every request
//   - the compute instance metadata service
//   - an OAuth-token-to-IAM-token exchange
//   - the yc command-line tool's active profile
//
// [Resolve] probes the sources in a fixed priority order and selects the first
// one able to produce a credential; the selected source lives for the lifetime
// of the SDK client. Sources issuing short-lived IAM tokens are wrapped in a
// [TokenCache], which memoizes the token until near expiry and coalesces
// concurrent refreshes into a single in-flight call.
//
// An [Authenticator] turns the selected source into the authorization header
// attached to every outbound request.
package auth
