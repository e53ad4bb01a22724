package exchange_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/oauthmodel"
	"github.com/jrsteele09/go-crm-connector/token/exchange"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "test-client"
	testClientSecret = "test-secret"
	testRedirectURI  = "http://localhost:8080/oauth-callback"
)

func newTokenServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Exchange_AuthorizationCode(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		require.Equal(t, testClientID, r.PostForm.Get("client_id"))
		require.Equal(t, testClientSecret, r.PostForm.Get("client_secret"))
		require.Equal(t, testRedirectURI, r.PostForm.Get("redirect_uri"))
		require.Equal(t, "abc", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "AT1",
			"refresh_token": "RT1",
			"expires_in":    1800,
		})
	})

	c := exchange.NewClient(server.URL)
	result, err := c.Exchange(context.Background(),
		oauthmodel.NewAuthorizationCodeRequest(testClientID, testClientSecret, testRedirectURI, "abc"))
	require.NoError(t, err)
	require.Equal(t, "AT1", result.AccessToken)
	require.Equal(t, "RT1", result.RefreshToken)
	require.EqualValues(t, 1800, result.ExpiresIn)
}

func TestClient_Exchange_RefreshToken(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		require.Equal(t, "RT1", r.PostForm.Get("refresh_token"))
		require.Empty(t, r.PostForm.Get("code"))

		_, _ = w.Write([]byte(`{"access_token":"AT2","refresh_token":"RT2","expires_in":1800}`))
	})

	c := exchange.NewClient(server.URL)
	result, err := c.Exchange(context.Background(),
		oauthmodel.NewRefreshTokenRequest(testClientID, testClientSecret, testRedirectURI, "RT1"))
	require.NoError(t, err)
	require.Equal(t, "AT2", result.AccessToken)
	require.Equal(t, "RT2", result.RefreshToken)
}

func TestClient_Exchange_Failures(t *testing.T) {
	refreshReq := oauthmodel.NewRefreshTokenRequest(testClientID, testClientSecret, testRedirectURI, "RT1")

	t.Run("non-2xx carries provider diagnostic", func(t *testing.T) {
		server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":"BAD_REFRESH_TOKEN","message":"missing or invalid refresh token"}`))
		})

		_, err := exchange.NewClient(server.URL).Exchange(context.Background(), refreshReq)
		require.ErrorIs(t, err, apperrors.ErrTokenExchange)

		var exErr *exchange.Error
		require.True(t, errors.As(err, &exErr))
		require.Equal(t, http.StatusBadRequest, exErr.StatusCode)
		require.Equal(t, oauthmodel.RefreshTokenGrant, exErr.GrantType)
		require.Contains(t, exErr.Body, "BAD_REFRESH_TOKEN")
		require.Equal(t, "missing or invalid refresh token", exErr.Diagnostic())
	})

	t.Run("RFC 6749 error body", func(t *testing.T) {
		server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"client authentication failed"}`))
		})

		_, err := exchange.NewClient(server.URL).Exchange(context.Background(), refreshReq)
		var exErr *exchange.Error
		require.True(t, errors.As(err, &exErr))
		require.Equal(t, "client authentication failed", exErr.Diagnostic())
	})

	t.Run("malformed body", func(t *testing.T) {
		server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := exchange.NewClient(server.URL).Exchange(context.Background(), refreshReq)
		require.ErrorIs(t, err, apperrors.ErrTokenExchange)
		require.Contains(t, err.Error(), "failed to parse token response")
	})

	t.Run("incomplete body", func(t *testing.T) {
		server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"refresh_token":"RT2"}`))
		})

		_, err := exchange.NewClient(server.URL).Exchange(context.Background(), refreshReq)
		require.ErrorIs(t, err, apperrors.ErrTokenExchange)
		require.ErrorIs(t, err, oauthmodel.ErrIncompleteTokenResponse)
	})

	t.Run("timeout is an exchange failure", func(t *testing.T) {
		release := make(chan struct{})
		server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		c := exchange.NewClient(server.URL, exchange.WithTimeout(20*time.Millisecond))
		_, err := c.Exchange(context.Background(), refreshReq)
		require.ErrorIs(t, err, apperrors.ErrTokenExchange)

		var exErr *exchange.Error
		require.True(t, errors.As(err, &exErr))
		require.Zero(t, exErr.StatusCode)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := exchange.NewClient(url).Exchange(context.Background(), refreshReq)
		require.ErrorIs(t, err, apperrors.ErrTokenExchange)
	})

	t.Run("invalid request never hits the network", func(t *testing.T) {
		called := false
		server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		_, err := exchange.NewClient(server.URL).Exchange(context.Background(),
			oauthmodel.NewRefreshTokenRequest(testClientID, testClientSecret, testRedirectURI, ""))
		require.ErrorIs(t, err, apperrors.ErrTokenExchange)
		require.ErrorIs(t, err, oauthmodel.ErrMissingRefreshToken)
		require.False(t, called)
	})
}
