package ups_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
	"github.com/vendidero/shiptastic-ups/pkg/shipper/ups"
)

func TestAuthenticator_ExchangesClientCredentials(t *testing.T) {
	var got *http.Request
	var form string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.Clone(context.Background())
		form = r.PostForm.Get("grant_type")
		writeJSON(w, http.StatusOK, `{"token_type":"Bearer","access_token":"ups-token","expires_in":3599,"status":"approved"}`)
	}))
	defer srv.Close()

	auth := ups.NewAuthenticator(ups.Config{
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		AccountNumber: "A1B2C3",
		BaseURL:       srv.URL,
	}, srv.Client())

	before := time.Now()
	tok, err := auth.Authenticate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ups-token", tok.Value)
	assert.WithinDuration(t, before.Add(3599*time.Second), tok.ExpiresAt, 5*time.Second)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, ups.AuthPath, got.URL.Path)
	assert.Equal(t, "client_credentials", form)
	assert.Equal(t, "A1B2C3", got.Header.Get("x-merchant-id"))

	user, pass, ok := got.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "client-id", user)
	assert.Equal(t, "client-secret", pass)
}

func TestAuthenticator_NoExpiryLeavesItToTheStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"token_type":"Bearer","access_token":"ups-token"}`)
	}))
	defer srv.Close()

	auth := ups.NewAuthenticator(ups.Config{ClientID: "id", ClientSecret: "secret", BaseURL: srv.URL}, nil)

	tok, err := auth.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, tok.ExpiresAt.IsZero())
}

func TestAuthenticator_RejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"response":{"errors":[{"code":"10401","message":"ClientId is Invalid"}]}}`)
	}))
	defer srv.Close()

	auth := ups.NewAuthenticator(ups.Config{ClientID: "wrong", ClientSecret: "wrong", BaseURL: srv.URL}, nil)

	tok, err := auth.Authenticate(context.Background())
	assert.Nil(t, tok)
	require.Error(t, err)

	var shipperErr *shipper.ShipperError
	require.ErrorAs(t, err, &shipperErr)
	assert.Equal(t, shipper.KindAuth, shipperErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, shipperErr.StatusCode)
	assert.Contains(t, shipperErr.Message, "ClientId is Invalid")
}

func TestAuthenticator_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	auth := ups.NewAuthenticator(ups.Config{ClientID: "id", ClientSecret: "secret", BaseURL: baseURL}, nil)

	_, err := auth.Authenticate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, shipper.ErrServiceUnavailable)
}

func TestConfig_Host(t *testing.T) {
	assert.Equal(t, ups.ProductionURL, ups.Config{}.Host())
	assert.Equal(t, ups.SandboxURL, ups.Config{Sandbox: true}.Host())
	assert.Equal(t, "http://localhost:8080", ups.Config{Sandbox: true, BaseURL: "http://localhost:8080/"}.Host())
}
