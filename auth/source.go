// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
)

// CredentialSource produces a [Credential] from one place: an explicit value,
// an environment variable, the instance metadata service, or the yc CLI.
//
// Resolve either returns a credential or fails with an error wrapping
// [ErrAuthUnavailable]. Implementations must be safe for repeated and
// concurrent use; sources that hit the network or the filesystem must not
// assume single-threaded callers.
type CredentialSource interface {
	// Name identifies the source in errors and logs.
	Name() string

	// Resolve produces a current Credential.
	Resolve(ctx context.Context) (Credential, error)
}

// PerCallResolver marks sources whose credential must be re-derived on every
// outbound request instead of being resolved once and cached. The resolver
// never wraps such a source in a [TokenCache], and the [Authenticator] calls
// Resolve for each request, so an externally rotated value is picked up
// without restarting the process.
type PerCallResolver interface {
	ResolvesPerCall() bool
}

// ResolvesPerCall reports whether s must be re-resolved on every request.
func ResolvesPerCall(s CredentialSource) bool {
	pc, ok := s.(PerCallResolver)
	return ok && pc.ResolvesPerCall()
}

// StaticSource always returns the same, pre-resolved credential.
type StaticSource struct {
	cred Credential
}

var _ CredentialSource = (*StaticSource)(nil)

// NewStaticSource returns a source that always yields cred.
func NewStaticSource(cred Credential) *StaticSource {
	return &StaticSource{cred: cred}
}

// Name implements [CredentialSource].
func (s *StaticSource) Name() string {
	return "static/" + string(s.cred.Kind())
}

// Resolve implements [CredentialSource].
func (s *StaticSource) Resolve(ctx context.Context) (Credential, error) {
	return s.cred, nil
}

// NoAuthSource always yields the [KindNone] credential, for installations
// that accept unauthenticated requests.
type NoAuthSource struct{}

var _ CredentialSource = (*NoAuthSource)(nil)

// NewNoAuthSource returns the no-authentication source.
func NewNoAuthSource() *NoAuthSource {
	return &NoAuthSource{}
}

// Name implements [CredentialSource].
func (s *NoAuthSource) Name() string {
	return "none"
}

// Resolve implements [CredentialSource].
func (s *NoAuthSource) Resolve(ctx context.Context) (Credential, error) {
	return None(), nil
}
