// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"os"
)

// Environment variables consulted during credential resolution, in priority order.
const (
	// EnvAPIKey carries an API key.
	EnvAPIKey = "YC_API_KEY"

	// EnvIAMToken carries an IAM token resolved once at SDK construction.
	EnvIAMToken = "YC_IAM_TOKEN"

	// EnvOAuthToken carries an OAuth token, exchanged for IAM tokens on demand.
	EnvOAuthToken = "YC_OAUTH_TOKEN"

	// EnvToken carries a continuously revalidated IAM token, re-read from the
	// environment on every outbound request. It is the variable managed
	// notebook environments keep fresh on the SDK's behalf.
	EnvToken = "YC_TOKEN"

	// EnvMetadataAddr overrides the instance metadata service address.
	EnvMetadataAddr = "YC_METADATA_ADDR"

	// EnvProfile selects the yc CLI profile used for authentication.
	EnvProfile = "YC_PROFILE"
)

// EnvPerCallSource reads an IAM token from an environment variable on every
// Resolve call. It is intentionally never cached: the variable is expected to
// be rotated externally before the token it holds expires.
type EnvPerCallSource struct {
	envVar string
}

var (
	_ CredentialSource = (*EnvPerCallSource)(nil)
	_ PerCallResolver  = (*EnvPerCallSource)(nil)
)

// NewEnvPerCallSource returns a per-request source reading the IAM token from
// envVar. An empty envVar selects [EnvToken].
func NewEnvPerCallSource(envVar string) *EnvPerCallSource {
	if envVar == "" {
		envVar = EnvToken
	}
	return &EnvPerCallSource{envVar: envVar}
}

// Name implements [CredentialSource].
func (s *EnvPerCallSource) Name() string {
	return "env-per-call/" + s.envVar
}

// Resolve implements [CredentialSource]. It re-reads the environment each time.
func (s *EnvPerCallSource) Resolve(ctx context.Context) (Credential, error) {
	v := os.Getenv(s.envVar)
	if v == "" {
		return Credential{}, fmt.Errorf("environment variable %s is not set: %w", s.envVar, ErrAuthUnavailable)
	}
	return NewCredential(KindIAMToken, v), nil
}

// ResolvesPerCall implements [PerCallResolver].
func (s *EnvPerCallSource) ResolvesPerCall() bool {
	return true
}

// staticFromEnv returns a static source of the given kind when envVar is set.
func staticFromEnv(envVar string, kind Kind) (CredentialSource, error) {
	v := os.Getenv(envVar)
	if v == "" {
		return nil, fmt.Errorf("environment variable %s is not set: %w", envVar, ErrAuthUnavailable)
	}
	return NewStaticSource(NewCredential(kind, v)), nil
}
