// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/juju/clock"

	"github.com/go-ycloud/ycml-go/pkg/logging"
)

// resolverConfig collects the knobs the probe chain passes down to the sources
// it constructs.
type resolverConfig struct {
	profile       string
	endpoint      string
	iamEndpoint   string
	metadataOpts  []MetadataOption
	cliOpts       []CLIOption
	clk           clock.Clock
	cacheOpts     []CacheOption
	perCallEnvVar string
}

// ResolveOption configures [Resolve].
type ResolveOption func(*resolverConfig)

// WithProfile selects the yc CLI profile consulted by the last chain step.
func WithProfile(profile string) ResolveOption {
	return func(cfg *resolverConfig) {
		cfg.profile = profile
	}
}

// WithEndpoint pins the API endpoint the CLI source must be configured for.
func WithEndpoint(endpoint string) ResolveOption {
	return func(cfg *resolverConfig) {
		cfg.endpoint = endpoint
	}
}

// WithResolveIAMEndpoint overrides the OAuth-to-IAM exchange endpoint.
func WithResolveIAMEndpoint(url string) ResolveOption {
	return func(cfg *resolverConfig) {
		cfg.iamEndpoint = url
	}
}

// WithResolveMetadataOptions passes options to the metadata source.
func WithResolveMetadataOptions(opts ...MetadataOption) ResolveOption {
	return func(cfg *resolverConfig) {
		cfg.metadataOpts = append(cfg.metadataOpts, opts...)
	}
}

// WithResolveCLIOptions passes options to the CLI profile source.
func WithResolveCLIOptions(opts ...CLIOption) ResolveOption {
	return func(cfg *resolverConfig) {
		cfg.cliOpts = append(cfg.cliOpts, opts...)
	}
}

// WithResolveClock substitutes the time source of constructed caches.
func WithResolveClock(clk clock.Clock) ResolveOption {
	return func(cfg *resolverConfig) {
		cfg.clk = clk
	}
}

// WithPerCallEnvVar names the environment variable read on every request by
// the continuously-revalidated source, instead of [EnvToken].
func WithPerCallEnvVar(envVar string) ResolveOption {
	return func(cfg *resolverConfig) {
		cfg.perCallEnvVar = envVar
	}
}

// probeStep is one step of the priority chain: it either constructs a ready
// source or fails with an error wrapping [ErrAuthUnavailable] so the chain
// moves on.
type probeStep struct {
	name  string
	probe func(ctx context.Context, cfg *resolverConfig) (CredentialSource, error)
}

// chain is the fixed priority order. Later steps are never consulted when an
// earlier one is viable: determinism beats robustness here, and after
// selection the SDK never silently falls back to another source mid-session.
var chain = []probeStep{
	{
		name: "env api key",
		probe: func(ctx context.Context, cfg *resolverConfig) (CredentialSource, error) {
			return staticFromEnv(EnvAPIKey, KindAPIKey)
		},
	},
	{
		name: "env iam token",
		probe: func(ctx context.Context, cfg *resolverConfig) (CredentialSource, error) {
			return staticFromEnv(EnvIAMToken, KindIAMToken)
		},
	},
	{
		name: "env oauth token",
		probe: func(ctx context.Context, cfg *resolverConfig) (CredentialSource, error) {
			src, err := staticFromEnv(EnvOAuthToken, KindOAuthToken)
			if err != nil {
				return nil, err
			}
			cred, _ := src.Resolve(ctx)
			return NewTokenCache(cfg.newOAuthSource(cred.Value()), cfg.cacheOpts...), nil
		},
	},
	{
		name: "metadata service",
		probe: func(ctx context.Context, cfg *resolverConfig) (CredentialSource, error) {
			opts := append([]MetadataOption{WithMetadataClock(cfg.clk)}, cfg.metadataOpts...)
			src := NewMetadataSource(opts...)
			if err := src.probe(ctx); err != nil {
				return nil, err
			}
			return NewTokenCache(src, cfg.cacheOpts...), nil
		},
	},
	{
		name: "env per-call iam token",
		probe: func(ctx context.Context, cfg *resolverConfig) (CredentialSource, error) {
			src := NewEnvPerCallSource(cfg.perCallEnvVar)
			// Viability means the variable holds a value right now; it is
			// still re-read on every request afterwards.
			if _, err := src.Resolve(ctx); err != nil {
				return nil, err
			}
			return src, nil
		},
	},
	{
		name: "cli profile",
		probe: func(ctx context.Context, cfg *resolverConfig) (CredentialSource, error) {
			opts := cfg.cliOpts
			if cfg.profile != "" {
				opts = append(opts, WithCLIProfile(cfg.profile))
			}
			if cfg.endpoint != "" {
				opts = append(opts, WithCLIEndpoint(cfg.endpoint))
			}
			src := NewCLIProfileSource(opts...)
			if err := src.probe(ctx); err != nil {
				return nil, err
			}
			return NewTokenCache(src, cfg.cacheOpts...), nil
		},
	},
}

func (cfg *resolverConfig) newOAuthSource(oauthToken string) *OAuthExchangeSource {
	var opts []OAuthOption
	if cfg.iamEndpoint != "" {
		opts = append(opts, WithIAMEndpoint(cfg.iamEndpoint))
	}
	return NewOAuthExchangeSource(oauthToken, opts...)
}

func newResolverConfig(opts []ResolveOption) *resolverConfig {
	cfg := &resolverConfig{clk: clock.WallClock}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.cacheOpts = append(cfg.cacheOpts, WithClock(cfg.clk))
	return cfg
}

// Resolve probes the credential sources in priority order and returns the
// first viable one. The returned source keeps its own refresh behavior:
// expiring tokens come back wrapped in a [TokenCache], the per-call
// environment source comes back raw so it is re-read on every request.
//
// When every step fails, Resolve fails with [ErrNoAuthAvailable].
func Resolve(ctx context.Context, opts ...ResolveOption) (CredentialSource, error) {
	cfg := newResolverConfig(opts)
	logger := logging.FromContext(ctx)

	for _, step := range chain {
		src, err := step.probe(ctx, cfg)
		if err != nil {
			logger.DebugContext(ctx, "credential source not viable",
				slog.String("source", step.name),
				slog.Any("reason", err),
			)
			continue
		}
		logger.DebugContext(ctx, "credential source selected",
			slog.String("source", src.Name()),
			slog.Bool("per_call", ResolvesPerCall(src)),
		)
		return src, nil
	}

	return nil, ErrNoAuthAvailable
}

// FromString classifies an explicit credential string and returns the matching
// source, bypassing environment probing entirely. OAuth tokens come back as a
// cached exchange source, because attaching them directly would pin a
// user-account secret to every request.
func FromString(raw string, opts ...ResolveOption) (CredentialSource, error) {
	cfg := newResolverConfig(opts)

	kind, err := ClassifyToken(raw)
	if err != nil {
		return nil, fmt.Errorf("classify explicit credential: %w", err)
	}
	switch kind {
	case KindOAuthToken:
		return NewTokenCache(cfg.newOAuthSource(raw), cfg.cacheOpts...), nil
	default:
		return NewStaticSource(NewCredential(kind, raw)), nil
	}
}
