package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds a single upstream API call.
const DefaultTimeout = 30 * time.Second

const maxBodySize = 10 << 20

// TokenSourcer yields a per-session source of access tokens.
type TokenSourcer interface {
	TokenSource(ctx context.Context, sessionID string) oauth2.TokenSource
}

// Gateway performs authenticated calls against the CRM API on behalf of a
// session.
type Gateway struct {
	baseURL string
	tokens  TokenSourcer
	base    http.RoundTripper
	timeout time.Duration
	tracer  trace.Tracer
}

type GatewayOption func(*Gateway)

// WithTransport sets the transport beneath the bearer-token transport.
func WithTransport(rt http.RoundTripper) GatewayOption {
	return func(g *Gateway) {
		g.base = rt
	}
}

func WithTimeout(timeout time.Duration) GatewayOption {
	return func(g *Gateway) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

func NewGateway(baseURL string, tokens TokenSourcer, options ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		base:    http.DefaultTransport,
		timeout: DefaultTimeout,
		tracer:  otel.Tracer("github.com/jrsteele09/go-crm-connector/crm"),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Call issues GET <baseURL><path> with the session's bearer token and returns
// the response body.
//
// Token failures keep their identity: errors.ErrUnauthenticated when the
// session has no credentials and errors.ErrTokenExchange when a refresh
// failed. A non-2xx response is returned as *APIError.
func (g *Gateway) Call(ctx context.Context, sessionID, path string) (json.RawMessage, error) {
	ctx, span := g.tracer.Start(ctx, "crm.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("crm.path", path)),
	)
	defer span.End()

	body, err := g.call(ctx, sessionID, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "crm call failed")
		return nil, err
	}
	return body, nil
}

func (g *Gateway) call(ctx context.Context, sessionID, path string) (json.RawMessage, error) {
	client := &http.Client{
		Transport: &oauth2.Transport{
			Source: g.tokens.TokenSource(ctx, sessionID),
			Base:   g.base,
		},
		Timeout: g.timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("[Gateway Call] failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[Gateway Call] %s: %w", path, err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("[Gateway Call] failed to read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().
			Str("session_id", sessionID).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("CRM API call failed")
		return nil, &APIError{Path: path, StatusCode: resp.StatusCode, Body: body}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("[Gateway Call] %s returned a non-JSON body", path)
	}
	return json.RawMessage(body), nil
}
