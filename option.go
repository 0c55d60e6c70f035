// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package ycml

import (
	"log/slog"
	"net/http"

	"github.com/juju/clock"

	"github.com/go-ycloud/ycml-go/auth"
	"github.com/go-ycloud/ycml-go/client"
)

type config struct {
	source     auth.CredentialSource
	authString string
	profile    string
	logger     *slog.Logger
	clk        clock.Clock
	clientOpts []client.Option
}

// Option configures the SDK.
type Option func(*config)

// WithAuth pins the credential source; no environment resolution happens.
func WithAuth(source auth.CredentialSource) Option {
	return func(c *config) {
		c.source = source
	}
}

// WithAuthString classifies a raw token string and derives a source from it,
// the same way an explicit string passed to the constructor of other SDKs
// would be. An unrecognized format fails construction.
func WithAuthString(raw string) Option {
	return func(c *config) {
		c.authString = raw
	}
}

// WithYCProfile selects the yc CLI profile consulted by the last resolution
// step.
func WithYCProfile(profile string) Option {
	return func(c *config) {
		c.profile = profile
	}
}

// WithEndpoint overrides the API endpoint for every service.
func WithEndpoint(endpoint string) Option {
	return func(c *config) {
		c.clientOpts = append(c.clientOpts, client.WithEndpoint(endpoint))
	}
}

// WithServiceMap overrides the per-service host mapping.
func WithServiceMap(m map[string]string) Option {
	return func(c *config) {
		c.clientOpts = append(c.clientOpts, client.WithServiceMap(m))
	}
}

// WithHTTPClient substitutes the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.clientOpts = append(c.clientOpts, client.WithHTTPClient(hc))
	}
}

// WithRetryPolicy overrides the transport retry policy.
func WithRetryPolicy(p client.RetryPolicy) Option {
	return func(c *config) {
		c.clientOpts = append(c.clientOpts, client.WithRetryPolicy(p))
	}
}

// WithServerDataLogging asks the backend to enable or disable logging of
// user data on its side.
func WithServerDataLogging(enabled bool) Option {
	return func(c *config) {
		c.clientOpts = append(c.clientOpts, client.WithServerDataLogging(enabled))
	}
}

// WithLogger sets the logger used during construction and carried into the
// transport.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithClock substitutes the time source of the transport and the credential
// cache.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		c.clk = clk
	}
}
