// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/oauth2"
)

// DefaultIAMEndpoint is the HTTP endpoint exchanging OAuth tokens for IAM tokens.
const DefaultIAMEndpoint = "https://iam.api.cloud.yandex.net/iam/v1/tokens"

type iamTokenRequest struct {
	YandexPassportOAuthToken string `json:"yandexPassportOauthToken"`
}

type iamTokenResponse struct {
	IAMToken  string    `json:"iamToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// OAuthExchangeSource holds a user OAuth token and exchanges it for short-lived
// IAM tokens through the identity service. It is always used behind a
// [TokenCache].
type OAuthExchangeSource struct {
	oauthToken  string
	iamEndpoint string
	httpClient  *http.Client
}

var _ CredentialSource = (*OAuthExchangeSource)(nil)

// OAuthOption configures an [OAuthExchangeSource].
type OAuthOption func(*OAuthExchangeSource)

// WithIAMEndpoint overrides the token-exchange endpoint URL.
func WithIAMEndpoint(url string) OAuthOption {
	return func(s *OAuthExchangeSource) {
		s.iamEndpoint = url
	}
}

// WithOAuthHTTPClient overrides the HTTP client used for the exchange.
func WithOAuthHTTPClient(httpClient *http.Client) OAuthOption {
	return func(s *OAuthExchangeSource) {
		s.httpClient = httpClient
	}
}

// NewOAuthExchangeSource returns a source exchanging oauthToken for IAM tokens.
func NewOAuthExchangeSource(oauthToken string, opts ...OAuthOption) *OAuthExchangeSource {
	s := &OAuthExchangeSource{
		oauthToken:  oauthToken,
		iamEndpoint: DefaultIAMEndpoint,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements [CredentialSource].
func (s *OAuthExchangeSource) Name() string {
	return "oauth-exchange"
}

// Resolve implements [CredentialSource]. Each call performs one exchange round
// trip; the wrapping [TokenCache] decides when a new exchange is due.
func (s *OAuthExchangeSource) Resolve(ctx context.Context) (Credential, error) {
	payload, err := sonic.Marshal(iamTokenRequest{YandexPassportOAuthToken: s.oauthToken})
	if err != nil {
		return Credential{}, fmt.Errorf("encode token exchange request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.iamEndpoint, bytes.NewReader(payload))
	if err != nil {
		return Credential{}, fmt.Errorf("build token exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("token exchange at %s failed: %v: %w", s.iamEndpoint, err, ErrAuthUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credential{}, fmt.Errorf("read token exchange response: %v: %w", err, ErrAuthUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return Credential{}, fmt.Errorf("token exchange returned status %d: %w", resp.StatusCode, ErrAuthUnavailable)
	}

	var token iamTokenResponse
	if err := sonic.Unmarshal(body, &token); err != nil {
		return Credential{}, fmt.Errorf("decode token exchange response: %v: %w", err, ErrAuthUnavailable)
	}
	if token.IAMToken == "" {
		return Credential{}, fmt.Errorf("token exchange response carries no token: %w", ErrAuthUnavailable)
	}

	return NewCredentialWithExpiry(KindIAMToken, token.IAMToken, token.ExpiresAt), nil
}

// tokenSource adapts a [CredentialSource] to [oauth2.TokenSource].
type tokenSource struct {
	ctx    context.Context
	source CredentialSource
}

// TokenSource exposes src as an [oauth2.TokenSource], for wiring the SDK's
// credential chain into libraries that speak the oauth2 interface. The
// returned source is as cached as src itself; wrap src in a [TokenCache]
// first when it issues expiring tokens.
func TokenSource(ctx context.Context, src CredentialSource) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, source: src}
}

// Token implements [oauth2.TokenSource].
func (ts *tokenSource) Token() (*oauth2.Token, error) {
	cred, err := ts.source.Resolve(ts.ctx)
	if err != nil {
		return nil, err
	}
	if cred.Kind() == KindNone {
		return nil, fmt.Errorf("source %s yields no credential: %w", ts.source.Name(), ErrAuthUnavailable)
	}
	return &oauth2.Token{
		AccessToken: cred.Value(),
		TokenType:   "Bearer",
		Expiry:      cred.ExpiresAt(),
	}, nil
}
