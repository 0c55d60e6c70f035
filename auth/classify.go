// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"fmt"
	"regexp"
)

// Token format markers. These are policy, not protocol: the upstream identity
// service may evolve its formats, which is why classification lives behind
// this single pure function.
var (
	// IAM tokens look like "t1.<payload>.<signature>".
	iamTokenPattern = regexp.MustCompile(`^t\d\.`)

	// OAuth tokens start with a "y<generation>_" marker.
	oauthTokenPattern = regexp.MustCompile(`^y[0123]_[-\w]`)

	// API keys are opaque secrets with a fixed "AQVN" prefix.
	apiKeyPattern = regexp.MustCompile(`^AQVN[A-Za-z0-9_-]+$`)
)

// ClassifyToken decides the [Kind] of a raw credential string by its structure.
//
// Classification is deterministic and total over the formats the identity
// service actually issues; a string matching none of them fails with
// [ErrAuthUnavailable] rather than being guessed at.
func ClassifyToken(raw string) (Kind, error) {
	switch {
	case raw == "":
		return KindNone, fmt.Errorf("empty credential string: %w", ErrAuthUnavailable)
	case iamTokenPattern.MatchString(raw):
		return KindIAMToken, nil
	case oauthTokenPattern.MatchString(raw):
		return KindOAuthToken, nil
	case apiKeyPattern.MatchString(raw):
		return KindAPIKey, nil
	default:
		return KindNone, fmt.Errorf("unrecognized credential string format: %w", ErrAuthUnavailable)
	}
}
