// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/retry"

	"github.com/go-ycloud/ycml-go/auth"
	"github.com/go-ycloud/ycml-go/internal/pool"
	"github.com/go-ycloud/ycml-go/pkg/logging"
)

const (
	// DefaultEndpoint is the public API endpoint; per-service hosts hang off it.
	DefaultEndpoint = "api.cloud.yandex.net"

	// EnvEndpoint overrides [DefaultEndpoint] from the environment.
	EnvEndpoint = "YC_API_ENDPOINT"

	requestIDHeader   = "x-client-request-id"
	dataLoggingHeader = "x-data-logging-enabled"
)

// defaultServiceMap routes logical service names to their hosts. Callers can
// override individual entries with [WithServiceMap].
var defaultServiceMap = map[string]string{
	"foundation-models": "llm.api.cloud.yandex.net",
	"ai-assistants":     "rest-assistant.api.cloud.yandex.net",
	"ai-files":          "rest-assistant.api.cloud.yandex.net",
	"search-indexes":    "rest-assistant.api.cloud.yandex.net",
	"datasets":          "fine-tuning.api.cloud.yandex.net",
	"tuning":            "fine-tuning.api.cloud.yandex.net",
	"batch-inference":   "llm.api.cloud.yandex.net",
	"operations":        "operation.api.cloud.yandex.net",
}

// Client is the HTTP transport shared by every resource service.
type Client struct {
	endpoint      string
	serviceMap    map[string]string
	httpClient    *http.Client
	authenticator *auth.Authenticator
	retryPolicy   RetryPolicy
	clk           clock.Clock
	dataLogging   *bool
}

// Option is a functional option for configuring the [Client].
type Option func(*Client)

// WithEndpoint overrides the API endpoint used to derive unmapped service hosts.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithServiceMap overrides hosts for individual services. Entries may carry an
// explicit scheme ("http://127.0.0.1:8080") for local installations.
func WithServiceMap(serviceMap map[string]string) Option {
	return func(c *Client) {
		for service, host := range serviceMap {
			c.serviceMap[service] = host
		}
	}
}

// WithHTTPClient substitutes the underlying [*http.Client].
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetryPolicy overrides [DefaultRetryPolicy].
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = policy
	}
}

// WithClock substitutes the time source used for retry back-off and
// operation polling, for tests.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		c.clk = clk
	}
}

// WithServerDataLogging asks the backend to enable or disable logging of user
// data on its side, for the services that support the toggle.
func WithServerDataLogging(enabled bool) Option {
	return func(c *Client) {
		c.dataLogging = &enabled
	}
}

// New returns a transport bound to authenticator.
func New(authenticator *auth.Authenticator, opts ...Option) *Client {
	c := &Client{
		endpoint:      DefaultEndpoint,
		serviceMap:    make(map[string]string, len(defaultServiceMap)),
		httpClient:    http.DefaultClient,
		authenticator: authenticator,
		retryPolicy:   DefaultRetryPolicy(),
		clk:           clock.WallClock,
	}
	for service, host := range defaultServiceMap {
		c.serviceMap[service] = host
	}
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		c.endpoint = endpoint
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticator returns the transport's request authenticator.
func (c *Client) Authenticator() *auth.Authenticator {
	return c.authenticator
}

// Clock returns the transport's time source. Poll loops in the resource
// services share it so tests can drive time.
func (c *Client) Clock() clock.Clock {
	return c.clk
}

// Call describes one request to a resource service.
type Call struct {
	// Service is the logical service name, resolved through the service map.
	Service string

	// Method is the HTTP method.
	Method string

	// Path is the absolute request path.
	Path string

	// Query carries optional query parameters.
	Query url.Values

	// Body is marshaled as the JSON request body when non-nil.
	Body any

	// Result receives the unmarshaled JSON response when non-nil.
	Result any

	// Idempotent marks the call safe to retry on transient failures.
	Idempotent bool
}

// baseURL resolves the scheme and host for a service.
func (c *Client) baseURL(service string) string {
	host, ok := c.serviceMap[service]
	if !ok {
		host = service + "." + c.endpoint
	}
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

// Do performs one call: it encodes the body, attaches the request id and the
// current credential, and retries transient failures for idempotent calls.
//
// An authentication failure aborts the call before any network I/O and
// surfaces the auth package's error untouched, distinct from [*APIError].
func (c *Client) Do(ctx context.Context, call Call) error {
	logger := logging.FromContext(ctx)

	var payload []byte
	if call.Body != nil {
		buf := pool.Buffer.Get()
		buf.Reset()
		defer pool.Buffer.Put(buf)
		if err := sonic.ConfigDefault.NewEncoder(buf).Encode(call.Body); err != nil {
			return fmt.Errorf("encode %s request: %w", call.Service, err)
		}
		payload = bytes.Clone(buf.Bytes())
	}

	requestID := uuid.NewString()
	policy := c.retryPolicy.normalized()

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return c.do(ctx, call, payload, requestID)
		},
		IsFatalError: func(err error) bool {
			return !call.Idempotent || !retryable(err)
		},
		NotifyFunc: func(err error, attempt int) {
			logger.DebugContext(ctx, "retrying transient failure",
				slog.String("service", call.Service),
				slog.String("path", call.Path),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
		},
		Attempts:    policy.Attempts,
		Delay:       policy.Delay,
		MaxDelay:    policy.MaxDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       c.clk,
		Stop:        ctx.Done(),
	})
	switch {
	case retry.IsAttemptsExceeded(err):
		return retry.LastError(err)
	case retry.IsRetryStopped(err):
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return retry.LastError(err)
	default:
		return err
	}
}

// do performs a single attempt.
func (c *Client) do(ctx context.Context, call Call, payload []byte, requestID string) error {
	u := c.baseURL(call.Service) + call.Path
	if len(call.Query) > 0 {
		u += "?" + call.Query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, u, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", call.Service, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(requestIDHeader, requestID)
	if c.dataLogging != nil {
		req.Header.Set(dataLoggingHeader, fmt.Sprintf("%t", *c.dataLogging))
	}

	// Credential attachment happens per attempt so per-call sources are
	// re-read and cached sources can refresh between attempts. On failure the
	// request never leaves the process.
	if err := c.authenticator.Apply(ctx, req.Header); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{
			Service:   call.Service,
			Message:   err.Error(),
			RequestID: requestID,
			err:       ErrNetwork,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			Service:   call.Service,
			Status:    resp.StatusCode,
			Message:   err.Error(),
			RequestID: requestID,
			err:       ErrNetwork,
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			Service:   call.Service,
			Status:    resp.StatusCode,
			Message:   strings.TrimSpace(string(raw)),
			RequestID: requestID,
			err:       classify(resp.StatusCode),
		}
		// Structured bodies carry a code and message; plain-text bodies were
		// already captured verbatim above.
		var detail struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if jsonErr := sonic.Unmarshal(raw, &detail); jsonErr == nil && detail.Message != "" {
			apiErr.Code = detail.Code
			apiErr.Message = detail.Message
		}
		return apiErr
	}

	if call.Result != nil {
		if err := sonic.Unmarshal(raw, call.Result); err != nil {
			return &APIError{
				Service:   call.Service,
				Status:    resp.StatusCode,
				Message:   fmt.Sprintf("decode response: %v", err),
				RequestID: requestID,
				err:       ErrDecode,
			}
		}
	}
	return nil
}
