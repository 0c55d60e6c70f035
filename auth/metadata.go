// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/juju/clock"
)

const (
	// metadataDefaultAddr is the well-known link-local metadata service address.
	metadataDefaultAddr = "169.254.169.254"

	// metadataTokenPath serves the IAM token of the instance's service account.
	metadataTokenPath = "/computeMetadata/v1/instance/service-accounts/default/token"

	metadataFlavorHeader = "Metadata-Flavor"
	metadataFlavorValue  = "Google"
)

// metadataTokenResponse is the token document served by the metadata endpoint.
type metadataTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// MetadataSource fetches short-lived IAM tokens from the compute instance
// metadata service. It is always used behind a [TokenCache] because the
// tokens it issues expire.
type MetadataSource struct {
	addr       string
	httpClient *http.Client
	clk        clock.Clock
}

var _ CredentialSource = (*MetadataSource)(nil)

// MetadataOption configures a [MetadataSource].
type MetadataOption func(*MetadataSource)

// WithMetadataAddr overrides the metadata service host:port.
func WithMetadataAddr(addr string) MetadataOption {
	return func(s *MetadataSource) {
		s.addr = addr
	}
}

// WithMetadataHTTPClient overrides the HTTP client used to reach the service.
func WithMetadataHTTPClient(httpClient *http.Client) MetadataOption {
	return func(s *MetadataSource) {
		s.httpClient = httpClient
	}
}

// WithMetadataClock substitutes the time source the token expiry is derived
// from. It must match the clock of the wrapping [TokenCache].
func WithMetadataClock(clk clock.Clock) MetadataOption {
	return func(s *MetadataSource) {
		s.clk = clk
	}
}

// NewMetadataSource returns a metadata-service credential source.
//
// The address is taken from the [EnvMetadataAddr] environment variable when
// set, falling back to the link-local default.
func NewMetadataSource(opts ...MetadataOption) *MetadataSource {
	s := &MetadataSource{
		addr:       metadataDefaultAddr,
		httpClient: http.DefaultClient,
		clk:        clock.WallClock,
	}
	if addr := os.Getenv(EnvMetadataAddr); addr != "" {
		s.addr = addr
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements [CredentialSource].
func (s *MetadataSource) Name() string {
	return "metadata/" + s.addr
}

// Resolve implements [CredentialSource]. It performs one HTTP round trip to
// the metadata endpoint and returns an IAM credential with its expiry set.
func (s *MetadataSource) Resolve(ctx context.Context) (Credential, error) {
	url := "http://" + s.addr + metadataTokenPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Credential{}, fmt.Errorf("build metadata request: %w", err)
	}
	req.Header.Set(metadataFlavorHeader, metadataFlavorValue)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("metadata service at %s unreachable: %v: %w", s.addr, err, ErrAuthUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credential{}, fmt.Errorf("read metadata response: %v: %w", err, ErrAuthUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return Credential{}, fmt.Errorf("metadata service returned status %d: %w", resp.StatusCode, ErrAuthUnavailable)
	}

	var token metadataTokenResponse
	if err := sonic.Unmarshal(body, &token); err != nil {
		return Credential{}, fmt.Errorf("decode metadata response: %v: %w", err, ErrAuthUnavailable)
	}
	if token.AccessToken == "" {
		return Credential{}, fmt.Errorf("metadata response carries no token: %w", ErrAuthUnavailable)
	}

	expiresAt := s.clk.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return NewCredentialWithExpiry(KindIAMToken, token.AccessToken, expiresAt), nil
}

// probe checks availability with a short deadline. The deadline is looser when
// the operator pointed [EnvMetadataAddr] somewhere explicitly, because then
// the source is almost certainly the one that will be used.
func (s *MetadataSource) probe(ctx context.Context) error {
	timeout := 100 * time.Millisecond
	if _, ok := os.LookupEnv(EnvMetadataAddr); ok {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := s.Resolve(ctx)
	return err
}
