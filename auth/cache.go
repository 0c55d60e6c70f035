// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juju/clock"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultSafetyMargin is subtracted from a token's expiry when deciding
	// whether the cached value may still be handed out, so a token never
	// expires mid-flight of a long-running request.
	DefaultSafetyMargin = 5 * time.Minute

	// DefaultRefreshPeriod bounds the age of cached credentials that carry no
	// expiry of their own (the yc CLI reports none, for example).
	DefaultRefreshPeriod = time.Hour
)

// TokenCache memoizes the credential produced by a wrapped source until near
// expiry and guarantees at most one refresh in flight at a time.
//
// Concurrent callers arriving during a refresh all receive the credential (or
// the error) produced by that one refresh. A refresh is decoupled from any
// single caller's lifetime: cancelling one request does not cancel a refresh
// other callers are waiting on.
//
// TokenCache itself implements [CredentialSource], so it slots in wherever the
// wrapped source would.
type TokenCache struct {
	source CredentialSource
	clk    clock.Clock
	margin time.Duration
	period time.Duration

	group singleflight.Group

	mu        sync.Mutex
	cred      Credential
	fetchedAt time.Time
	primed    bool
}

var _ CredentialSource = (*TokenCache)(nil)

// CacheOption configures a [TokenCache].
type CacheOption func(*TokenCache)

// WithClock substitutes the time source, for tests.
func WithClock(clk clock.Clock) CacheOption {
	return func(c *TokenCache) {
		c.clk = clk
	}
}

// WithSafetyMargin overrides [DefaultSafetyMargin].
func WithSafetyMargin(margin time.Duration) CacheOption {
	return func(c *TokenCache) {
		c.margin = margin
	}
}

// WithRefreshPeriod overrides [DefaultRefreshPeriod].
func WithRefreshPeriod(period time.Duration) CacheOption {
	return func(c *TokenCache) {
		c.period = period
	}
}

// NewTokenCache wraps source in a cache. Wrapping a per-call source is a
// programming error: those are designed to be re-read on every request.
func NewTokenCache(source CredentialSource, opts ...CacheOption) *TokenCache {
	if ResolvesPerCall(source) {
		panic(fmt.Sprintf("auth: TokenCache must not wrap per-call source %s", source.Name()))
	}
	c := &TokenCache{
		source: source,
		clk:    clock.WallClock,
		margin: DefaultSafetyMargin,
		period: DefaultRefreshPeriod,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements [CredentialSource].
func (c *TokenCache) Name() string {
	return c.source.Name()
}

// Resolve implements [CredentialSource]. It returns the cached credential
// while it is still comfortably inside its lifetime, and otherwise triggers
// exactly one refresh shared by all concurrent callers.
func (c *TokenCache) Resolve(ctx context.Context) (Credential, error) {
	if cred, ok := c.cached(); ok {
		return cred, nil
	}

	// The refresh runs in its own goroutine on a context stripped of this
	// caller's cancellation: other waiters must still get a result when the
	// triggering request is cancelled.
	refreshCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("refresh", func() (any, error) {
		// A refresh that finished while this call was queued already
		// satisfied us.
		if cred, ok := c.cached(); ok {
			return cred, nil
		}
		return c.refresh(refreshCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Credential{}, res.Err
		}
		return res.Val.(Credential), nil
	case <-ctx.Done():
		return Credential{}, ctx.Err()
	}
}

func (c *TokenCache) refresh(ctx context.Context) (Credential, error) {
	cred, err := c.source.Resolve(ctx)
	if err != nil {
		c.mu.Lock()
		hadToken := c.primed
		c.mu.Unlock()
		if hadToken {
			// The stale credential is not served past the margin; every
			// waiter of this refresh sees the same failure.
			return Credential{}, &TokenRefreshError{Source: c.source.Name(), Err: err}
		}
		return Credential{}, err
	}

	c.mu.Lock()
	c.cred = cred
	c.fetchedAt = c.clk.Now()
	c.primed = true
	c.mu.Unlock()

	return cred, nil
}

// cached returns the memoized credential while it is still valid.
func (c *TokenCache) cached() (Credential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.primed {
		return Credential{}, false
	}

	now := c.clk.Now()
	if expiresAt := c.cred.ExpiresAt(); !expiresAt.IsZero() {
		if now.Before(expiresAt.Add(-c.margin)) {
			return c.cred, true
		}
		return Credential{}, false
	}
	if now.Sub(c.fetchedAt) < c.period {
		return c.cred, true
	}
	return Credential{}, false
}
