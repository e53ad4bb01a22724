package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jrsteele09/go-crm-connector/oauthmodel"
)

// DefaultTimeout bounds a single token endpoint round trip.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a token response is read.
const maxBodySize = 1 << 20

// Client performs token endpoint exchanges. It holds no credentials and
// mutates no stores; callers decide what to do with the result.
type Client struct {
	tokenURL   string
	httpClient *http.Client
	tracer     trace.Tracer
}

type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout is left as given.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the round trip timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func NewClient(tokenURL string, options ...ClientOption) *Client {
	c := &Client{
		tokenURL:   tokenURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tracer:     otel.Tracer("github.com/jrsteele09/go-crm-connector/token/exchange"),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// TokenURL returns the token endpoint this client posts to.
func (c *Client) TokenURL() string {
	return c.tokenURL
}

// Exchange posts the request to the token endpoint. Any failure is returned
// as *Error.
func (c *Client) Exchange(ctx context.Context, req oauthmodel.ExchangeRequest) (*oauthmodel.ExchangeResult, error) {
	ctx, span := c.tracer.Start(ctx, "oauth.token_exchange",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("oauth.grant_type", req.GrantType.String())),
	)
	defer span.End()

	result, err := c.exchange(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token exchange failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int64("oauth.expires_in", result.ExpiresIn))
	return result, nil
}

func (c *Client) exchange(ctx context.Context, req oauthmodel.ExchangeRequest) (*oauthmodel.ExchangeResult, error) {
	fail := func(status int, body []byte, err error) error {
		return &Error{GrantType: req.GrantType, StatusCode: status, Body: string(body), Err: err}
	}

	if err := req.Validate(); err != nil {
		return nil, fail(0, nil, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(req.Form().Encode()))
	if err != nil {
		return nil, fail(0, nil, fmt.Errorf("failed to create token request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fail(0, nil, fmt.Errorf("token request failed: %w", err))
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fail(resp.StatusCode, nil, fmt.Errorf("failed to read token response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(resp.StatusCode, body, nil)
	}

	var result oauthmodel.ExchangeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fail(0, body, fmt.Errorf("failed to parse token response: %w", err))
	}
	if err := result.Validate(); err != nil {
		return nil, fail(0, body, err)
	}
	return &result, nil
}
