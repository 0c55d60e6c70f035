// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"time"
)

// RetryPolicy configures retries of transient transport failures (rate
// limiting, 5xx answers, network errors). Authentication failures and other
// client errors are never retried.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first one.
	Attempts int

	// Delay is the back-off before the second try; it doubles per attempt.
	Delay time.Duration

	// MaxDelay caps the growing back-off.
	MaxDelay time.Duration
}

// DefaultRetryPolicy mirrors the behavior servers are provisioned for:
// a handful of attempts with doubling delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 4,
		Delay:    500 * time.Millisecond,
		MaxDelay: 10 * time.Second,
	}
}

// NoRetryPolicy disables retries entirely.
func NoRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 1}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Delay <= 0 {
		p.Delay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Second
	}
	return p
}
