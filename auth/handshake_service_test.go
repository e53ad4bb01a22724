package auth_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-crm-connector/auth"
	"github.com/jrsteele09/go-crm-connector/auth/flowrepo"
	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/oauthmodel"
	"github.com/jrsteele09/go-crm-connector/token"
	"github.com/jrsteele09/go-crm-connector/token/access"
	"github.com/jrsteele09/go-crm-connector/token/exchange"
	"github.com/jrsteele09/go-crm-connector/token/refresh"
)

const (
	testSessionID    = "session-1"
	testClientID     = "client-id"
	testClientSecret = "client-secret"
	testRedirectURI  = "http://localhost:8080/oauth-callback"
	testAuthURL      = "https://app.hubspot.com/oauth/authorize"
)

var testScopes = []string{"crm.objects.contacts.read", "content"}

// fakeExchanger returns canned results and records requests.
type fakeExchanger struct {
	mu       sync.Mutex
	requests []oauthmodel.ExchangeRequest
	result   *oauthmodel.ExchangeResult
	err      error
}

func (f *fakeExchanger) Exchange(_ context.Context, req oauthmodel.ExchangeRequest) (*oauthmodel.ExchangeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeExchanger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type testFixture struct {
	exchanger *fakeExchanger
	refresh   *refresh.InMemoryRepo
	cache     *access.InMemoryCache
	manager   *token.Manager
	flows     *flowrepo.InMemoryRepo
	service   *auth.HandshakeService
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	exchanger := &fakeExchanger{result: &oauthmodel.ExchangeResult{AccessToken: "AT1", RefreshToken: "RT1", ExpiresIn: 1800}}
	credentials := token.ClientCredentials{ClientID: testClientID, ClientSecret: testClientSecret, RedirectURI: testRedirectURI}
	refreshRepo := refresh.NewInMemoryRepo()
	cache := access.NewInMemoryCache()
	manager := token.New(refreshRepo, cache, exchanger, credentials)
	flows := flowrepo.NewInMemoryRepo()

	service, err := auth.NewHandshakeService(
		auth.Deps{Exchanger: exchanger, Tokens: manager, Flows: flows},
		oauth2.Endpoint{AuthURL: testAuthURL, TokenURL: "https://api.hubapi.com/oauth/v1/token"},
		credentials,
		testScopes,
		auth.WithNowTime(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)

	return &testFixture{
		exchanger: exchanger,
		refresh:   refreshRepo,
		cache:     cache,
		manager:   manager,
		flows:     flows,
		service:   service,
	}
}

func TestNewHandshakeService_RequiresDeps(t *testing.T) {
	_, err := auth.NewHandshakeService(auth.Deps{}, oauth2.Endpoint{AuthURL: testAuthURL}, token.ClientCredentials{}, nil)
	require.Error(t, err)
}

func TestHandshakeService_AuthorizeURL(t *testing.T) {
	f := setupTestFixture(t)
	require.Equal(t, flowrepo.Unstarted, f.service.State(testSessionID))

	raw := f.service.AuthorizeURL(testSessionID)
	require.True(t, strings.HasPrefix(raw, testAuthURL+"?"))

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	require.Equal(t, "crm.objects.contacts.read content", q.Get("scope"))
	require.NotContains(t, q, "client_secret")

	require.Equal(t, flowrepo.AwaitingConsent, f.service.State(testSessionID))
	require.Zero(t, f.exchanger.calls())
	require.Zero(t, f.refresh.Count(), "no credential is stored before consent")
}

func TestHandshakeService_Callback_Success(t *testing.T) {
	f := setupTestFixture(t)
	f.service.AuthorizeURL(testSessionID)

	redirect, err := f.service.Callback(context.Background(), testSessionID, auth.CallbackParams{Code: "abc"})
	require.NoError(t, err)
	require.Equal(t, auth.HomePath, redirect)
	require.Equal(t, flowrepo.Authenticated, f.service.State(testSessionID))

	require.Equal(t, 1, f.exchanger.calls())
	req := f.exchanger.requests[0]
	require.Equal(t, oauthmodel.AuthorizationCodeGrant, req.GrantType)
	require.Equal(t, "abc", req.Code)
	require.Equal(t, testRedirectURI, req.RedirectURI)

	require.True(t, f.manager.IsAuthorized(testSessionID))
	at, err := f.manager.GetValidAccess(context.Background(), testSessionID)
	require.NoError(t, err)
	require.Equal(t, "AT1", at)
	require.Equal(t, 1, f.exchanger.calls(), "access token served from cache")
}

func TestHandshakeService_Callback_ExchangeFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.exchanger.err = &exchange.Error{
		GrantType:  oauthmodel.AuthorizationCodeGrant,
		StatusCode: http.StatusBadRequest,
		Body:       `{"status":"BAD_AUTH_CODE","message":"code expired"}`,
	}

	redirect, err := f.service.Callback(context.Background(), testSessionID, auth.CallbackParams{Code: "stale"})
	require.ErrorIs(t, err, apperrors.ErrTokenExchange)
	require.Equal(t, "/error?msg=code+expired", redirect)
	require.Equal(t, flowrepo.Error, f.service.State(testSessionID))
	require.False(t, f.manager.IsAuthorized(testSessionID))

	fs, err := f.flows.Get(testSessionID)
	require.NoError(t, err)
	require.Equal(t, "code expired", fs.Diagnostic)
}

func TestHandshakeService_Callback_MissingCode(t *testing.T) {
	f := setupTestFixture(t)
	f.service.AuthorizeURL(testSessionID)

	redirect, err := f.service.Callback(context.Background(), testSessionID, auth.CallbackParams{})
	require.ErrorIs(t, err, apperrors.ErrMissingAuthorizationCode)
	require.Equal(t, auth.InstallPath, redirect)
	require.Equal(t, flowrepo.AwaitingConsent, f.service.State(testSessionID), "state is unchanged")
	require.Zero(t, f.exchanger.calls())
}

func TestHandshakeService_Callback_ProviderError(t *testing.T) {
	f := setupTestFixture(t)

	redirect, err := f.service.Callback(context.Background(), testSessionID,
		auth.CallbackParamsFromValues(url.Values{
			"error":             {"access_denied"},
			"error_description": {"user declined"},
		}))
	require.ErrorIs(t, err, apperrors.ErrAuthorizationDenied)
	require.Equal(t, "/error?msg=user+declined", redirect)
	require.Equal(t, flowrepo.Error, f.service.State(testSessionID))
	require.Zero(t, f.exchanger.calls())
}

func TestHandshakeService_Callback_ReplacesPreviousCredentials(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.service.Callback(context.Background(), testSessionID, auth.CallbackParams{Code: "first"})
	require.NoError(t, err)

	f.exchanger.result = &oauthmodel.ExchangeResult{AccessToken: "AT2", RefreshToken: "RT2", ExpiresIn: 1800}
	_, err = f.service.Callback(context.Background(), testSessionID, auth.CallbackParams{Code: "second"})
	require.NoError(t, err)

	rt, err := f.refresh.Get(testSessionID)
	require.NoError(t, err)
	require.Equal(t, "RT2", rt.Token)
	require.Equal(t, 1, f.refresh.Count())
}
