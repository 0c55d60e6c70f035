// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"net/http"
)

// AuthorizationHeader is the request header credentials are attached to.
const AuthorizationHeader = "Authorization"

// Authenticator attaches the current credential of a resolved source to
// outbound requests. It is invoked for every call, so per-call sources are
// re-read each time while cached sources answer from their [TokenCache].
type Authenticator struct {
	source CredentialSource
}

// NewAuthenticator returns an Authenticator over the resolved source.
func NewAuthenticator(source CredentialSource) *Authenticator {
	return &Authenticator{source: source}
}

// Source returns the underlying credential source.
func (a *Authenticator) Source() CredentialSource {
	return a.source
}

// Header produces the authorization header for one outbound call. The scheme
// is chosen by the credential's kind; [KindNone] attaches nothing (empty key).
// It fails before any request I/O when no credential can be produced.
func (a *Authenticator) Header(ctx context.Context) (key, value string, err error) {
	cred, err := a.source.Resolve(ctx)
	if err != nil {
		return "", "", err
	}

	switch cred.Kind() {
	case KindAPIKey:
		return AuthorizationHeader, "Api-Key " + cred.Value(), nil
	case KindIAMToken:
		return AuthorizationHeader, "Bearer " + cred.Value(), nil
	case KindOAuthToken:
		return AuthorizationHeader, "OAuth " + cred.Value(), nil
	case KindNone:
		return "", "", nil
	default:
		return "", "", fmt.Errorf("credential kind %q has no header form: %w", cred.Kind(), ErrAuthUnavailable)
	}
}

// Apply sets the authorization header on h, or leaves it untouched for the
// no-auth credential.
func (a *Authenticator) Apply(ctx context.Context, h http.Header) error {
	key, value, err := a.Header(ctx)
	if err != nil {
		return err
	}
	if key != "" {
		h.Set(key, value)
	}
	return nil
}
