// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-ycloud/ycml-go/auth"
)

// scrubEnv clears every environment variable the resolver consults and makes
// the network/CLI chain steps fail fast.
func scrubEnv(t *testing.T) {
	t.Helper()
	for _, envVar := range []string{
		auth.EnvAPIKey,
		auth.EnvIAMToken,
		auth.EnvOAuthToken,
		auth.EnvToken,
		auth.EnvProfile,
	} {
		t.Setenv(envVar, "")
	}
	// Unroutable metadata address: the probe's short deadline trips on it.
	t.Setenv(auth.EnvMetadataAddr, "127.0.0.1:1")
	// No yc binary reachable.
	t.Setenv("PATH", t.TempDir())
}

func TestResolve_PriorityOrder(t *testing.T) {
	scrubEnv(t)
	t.Setenv(auth.EnvAPIKey, "AQVNapikey")
	t.Setenv(auth.EnvIAMToken, "t1.iamtoken")

	src, err := auth.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	cred, err := src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("source Resolve: %v", err)
	}
	if cred.Kind() != auth.KindAPIKey {
		t.Fatalf("Kind = %q, want %q: the API key source outranks the IAM token source", cred.Kind(), auth.KindAPIKey)
	}
	if cred.Value() != "AQVNapikey" {
		t.Fatalf("Value = %q, want the API key", cred.Value())
	}
}

func TestResolve_StaticIAMToken(t *testing.T) {
	scrubEnv(t)
	t.Setenv(auth.EnvIAMToken, "t1.iamtoken")

	src, err := auth.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if auth.ResolvesPerCall(src) {
		t.Fatalf("the resolve-once IAM source must not be per-call")
	}

	cred, err := src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("source Resolve: %v", err)
	}
	if cred.Value() != "t1.iamtoken" {
		t.Fatalf("Value = %q, want %q", cred.Value(), "t1.iamtoken")
	}
}

func TestResolve_PerCallToken(t *testing.T) {
	scrubEnv(t)
	t.Setenv(auth.EnvToken, "t1.rotated")

	src, err := auth.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !auth.ResolvesPerCall(src) {
		t.Fatalf("the YC_TOKEN source must keep its per-call behavior through resolution")
	}

	t.Setenv(auth.EnvToken, "t1.rotated-again")
	cred, err := src.Resolve(context.Background())
	if err != nil {
		t.Fatalf("source Resolve: %v", err)
	}
	if cred.Value() != "t1.rotated-again" {
		t.Fatalf("Value = %q, want the rotated token", cred.Value())
	}
}

func TestResolve_NothingAvailable(t *testing.T) {
	scrubEnv(t)

	_, err := auth.Resolve(context.Background())
	if !errors.Is(err, auth.ErrNoAuthAvailable) {
		t.Fatalf("Resolve error = %v, want ErrNoAuthAvailable", err)
	}
}

func TestFromString(t *testing.T) {
	tests := map[string]struct {
		raw      string
		wantKind auth.Kind
	}{
		"iam token": {raw: "t1.some.token", wantKind: auth.KindIAMToken},
		"api key":   {raw: "AQVNxbEqg8dpAk3nQwsLJ2", wantKind: auth.KindAPIKey},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			src, err := auth.FromString(tt.raw)
			if err != nil {
				t.Fatalf("FromString: %v", err)
			}
			cred, err := src.Resolve(context.Background())
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if cred.Kind() != tt.wantKind {
				t.Fatalf("Kind = %q, want %q", cred.Kind(), tt.wantKind)
			}
			if cred.Value() != tt.raw {
				t.Fatalf("Value = %q, want the input string", cred.Value())
			}
		})
	}
}

func TestFromString_Unrecognized(t *testing.T) {
	if _, err := auth.FromString("not-a-credential"); !errors.Is(err, auth.ErrAuthUnavailable) {
		t.Fatalf("FromString error = %v, want ErrAuthUnavailable", err)
	}
}
