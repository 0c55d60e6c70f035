// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-ycloud/ycml-go/auth"
	"github.com/go-ycloud/ycml-go/client"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...client.Option) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	authenticator := auth.NewAuthenticator(
		auth.NewStaticSource(auth.NewCredential(auth.KindIAMToken, "t1.test-token")),
	)
	opts = append([]client.Option{
		client.WithServiceMap(map[string]string{"test-service": srv.URL}),
		client.WithRetryPolicy(client.RetryPolicy{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}),
	}, opts...)
	return client.New(authenticator, opts...)
}

func TestClient_AttachesCredentialAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("x-client-request-id")
		w.Write([]byte(`{"ok":true}`))
	}))

	var result struct {
		OK bool `json:"ok"`
	}
	err := c.Do(context.Background(), client.Call{
		Service: "test-service",
		Method:  http.MethodGet,
		Path:    "/v1/things",
		Result:  &result,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "Bearer t1.test-token" {
		t.Fatalf("Authorization = %q, want %q", gotAuth, "Bearer t1.test-token")
	}
	if gotRequestID == "" {
		t.Fatalf("request carried no x-client-request-id")
	}
	if !result.OK {
		t.Fatalf("response not decoded")
	}
}

func TestClient_EncodesBody(t *testing.T) {
	type echo struct {
		Name string `json:"name"`
	}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if _, err := w.Write([]byte(`{"name":"echoed"}`)); err != nil {
			t.Error(err)
		}
	}))

	var got echo
	err := c.Do(context.Background(), client.Call{
		Service: "test-service",
		Method:  http.MethodPost,
		Path:    "/v1/things",
		Body:    echo{Name: "original"},
		Result:  &got,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if diff := cmp.Diff(echo{Name: "echoed"}, got); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"code":"RESOURCE_EXHAUSTED","message":"slow down"}`, http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))

	err := c.Do(context.Background(), client.Call{
		Service:    "test-service",
		Method:     http.MethodGet,
		Path:       "/v1/things",
		Idempotent: true,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("server saw %d calls, want 3", got)
	}
}

func TestClient_RetriesExhaustedSurfaceLastError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"still broken"}`, http.StatusServiceUnavailable)
	}))

	var result struct {
		OK bool `json:"ok"`
	}
	err := c.Do(context.Background(), client.Call{
		Service:    "test-service",
		Method:     http.MethodGet,
		Path:       "/v1/things",
		Result:     &result,
		Idempotent: true,
	})
	if !errors.Is(err, client.ErrServer) {
		t.Fatalf("Do error = %v, want ErrServer", err)
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("Do error = %#v, want *APIError with status 503", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("server saw %d calls, want 3", got)
	}
}

func TestClient_SingleAttemptFailureSurfaces(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"slow down"}`, http.StatusTooManyRequests)
	}), client.WithRetryPolicy(client.NoRetryPolicy()))

	err := c.Do(context.Background(), client.Call{
		Service:    "test-service",
		Method:     http.MethodGet,
		Path:       "/v1/things",
		Idempotent: true,
	})
	if !errors.Is(err, client.ErrRateLimited) {
		t.Fatalf("Do error = %v, want ErrRateLimited", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server saw %d calls, want 1", got)
	}
}

func TestClient_DoesNotRetryNonIdempotent(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))

	err := c.Do(context.Background(), client.Call{
		Service: "test-service",
		Method:  http.MethodPost,
		Path:    "/v1/things",
	})
	if !errors.Is(err, client.ErrServer) {
		t.Fatalf("Do error = %v, want ErrServer", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server saw %d calls, want 1", got)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"code":"NOT_FOUND","message":"no such thing"}`, http.StatusNotFound)
	}))

	err := c.Do(context.Background(), client.Call{
		Service:    "test-service",
		Method:     http.MethodGet,
		Path:       "/v1/things/absent",
		Idempotent: true,
	})
	if !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("Do error = %v, want ErrNotFound", err)
	}

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Do error = %T, want *APIError", err)
	}
	if apiErr.Code != "NOT_FOUND" || apiErr.Message != "no such thing" {
		t.Fatalf("APIError = %+v, want decoded code and message", apiErr)
	}
	if apiErr.RequestID == "" {
		t.Fatalf("APIError carries no request id")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server saw %d calls, want 1", got)
	}
}

func TestClient_AuthFailureBeforeIO(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)

	t.Setenv(auth.EnvToken, "")
	authenticator := auth.NewAuthenticator(auth.NewEnvPerCallSource(""))
	c := client.New(authenticator,
		client.WithServiceMap(map[string]string{"test-service": srv.URL}),
	)

	err := c.Do(context.Background(), client.Call{
		Service: "test-service",
		Method:  http.MethodGet,
		Path:    "/v1/things",
	})
	if !errors.Is(err, auth.ErrAuthUnavailable) {
		t.Fatalf("Do error = %v, want ErrAuthUnavailable", err)
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("auth failure must stay distinct from transport errors, got %v", err)
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("server saw %d calls, want none before auth", got)
	}
}

func TestClient_PerCallCredentialRotation(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	authenticator := auth.NewAuthenticator(auth.NewEnvPerCallSource(""))
	c := client.New(authenticator,
		client.WithServiceMap(map[string]string{"test-service": srv.URL}),
	)
	call := client.Call{Service: "test-service", Method: http.MethodGet, Path: "/v1/things"}

	t.Setenv(auth.EnvToken, "t1.before")
	if err := c.Do(context.Background(), call); err != nil {
		t.Fatalf("Do: %v", err)
	}
	t.Setenv(auth.EnvToken, "t1.after")
	if err := c.Do(context.Background(), call); err != nil {
		t.Fatalf("Do: %v", err)
	}

	want := []string{"Bearer t1.before", "Bearer t1.after"}
	if diff := cmp.Diff(want, gotAuth); diff != "" {
		t.Fatalf("rotated credential not picked up (-want +got):\n%s", diff)
	}
}

func TestClient_NetworkErrorClassified(t *testing.T) {
	authenticator := auth.NewAuthenticator(auth.NewNoAuthSource())
	c := client.New(authenticator,
		client.WithServiceMap(map[string]string{"test-service": "http://127.0.0.1:1"}),
		client.WithRetryPolicy(client.NoRetryPolicy()),
	)

	err := c.Do(context.Background(), client.Call{
		Service: "test-service",
		Method:  http.MethodGet,
		Path:    "/v1/things",
	})
	if !errors.Is(err, client.ErrNetwork) {
		t.Fatalf("Do error = %v, want ErrNetwork", err)
	}
}
