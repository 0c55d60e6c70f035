// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"log/slog"
	"time"
)

// Kind identifies what sort of secret a [Credential] carries.
type Kind string

const (
	// KindAPIKey is a long-lived secret tied to a service account.
	KindAPIKey Kind = "api_key"

	// KindIAMToken is a short-lived bearer token issued by the cloud IAM service.
	KindIAMToken Kind = "iam_token"

	// KindOAuthToken is a user-account credential obtained via an OAuth flow.
	KindOAuthToken Kind = "oauth_token"

	// KindNone marks the absence of authentication, for local or
	// on-premises installations that accept unauthenticated requests.
	KindNone Kind = "none"
)

// Credential is one resolved secret plus its metadata.
//
// A Credential is immutable once constructed; refreshing always produces a new
// value. The secret itself is unexported and redacted by every formatting and
// marshaling path so it cannot leak into logs.
type Credential struct {
	kind      Kind
	value     string
	expiresAt time.Time
}

// NewCredential returns a Credential of the given kind holding value.
func NewCredential(kind Kind, value string) Credential {
	return Credential{kind: kind, value: value}
}

// NewCredentialWithExpiry returns a Credential that becomes invalid at expiresAt.
//
// Only IAM tokens carry an expiry; other kinds are constructed with [NewCredential].
func NewCredentialWithExpiry(kind Kind, value string, expiresAt time.Time) Credential {
	return Credential{kind: kind, value: value, expiresAt: expiresAt}
}

// None returns the credential representing "no authentication".
func None() Credential {
	return Credential{kind: KindNone}
}

// Kind returns the credential kind.
func (c Credential) Kind() Kind {
	if c.kind == "" {
		return KindNone
	}
	return c.kind
}

// Value returns the secret value. It is empty exactly when Kind is [KindNone].
func (c Credential) Value() string {
	return c.value
}

// ExpiresAt returns the expiry timestamp, or the zero time for credentials
// that do not expire.
func (c Credential) ExpiresAt() time.Time {
	return c.expiresAt
}

// Zero reports whether c is the zero Credential (no kind, no value).
func (c Credential) Zero() bool {
	return c.kind == "" && c.value == ""
}

// String implements [fmt.Stringer], redacting the secret.
func (c Credential) String() string {
	return "Credential(" + string(c.Kind()) + ", [REDACTED])"
}

// GoString implements [fmt.GoStringer], redacting the secret.
func (c Credential) GoString() string {
	return "auth.Credential{" + string(c.Kind()) + ", [REDACTED]}"
}

// MarshalJSON implements [encoding/json.Marshaler], redacting the secret.
func (c Credential) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// LogValue implements [log/slog.LogValuer], redacting the secret.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(c.Kind())),
		slog.String("value", "[REDACTED]"),
	)
}
