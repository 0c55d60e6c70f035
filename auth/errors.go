// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthUnavailable reports that a single credential source has nothing
	// to offer: the environment variable is unset, the metadata endpoint is
	// unreachable, the CLI profile is missing, or an explicit string does not
	// match any known token format. The resolver treats it as "try the next
	// source".
	ErrAuthUnavailable = errors.New("credential source unavailable")

	// ErrNoAuthAvailable reports that every source in the priority chain
	// failed. It is fatal to SDK client construction and is never retried.
	ErrNoAuthAvailable = errors.New("no explicit authorization data was passed and none was found in the environment")
)

// TokenRefreshError reports that a [TokenCache]'s wrapped source failed during
// a refresh after a prior successful resolution. It is delivered to every
// caller waiting on that refresh; the previously cached token is not served
// past its safety margin.
type TokenRefreshError struct {
	// Source is the name of the wrapped credential source.
	Source string

	// Err is the failure returned by the wrapped source.
	Err error
}

// Error implements the error interface.
func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("refreshing credential from %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying source error.
func (e *TokenRefreshError) Unwrap() error {
	return e.Err
}
