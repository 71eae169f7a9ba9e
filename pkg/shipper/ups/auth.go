package ups

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
	"github.com/vendidero/shiptastic-ups/pkg/tokenstore"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const authTimeout = 30 * time.Second

// Authenticator exchanges the client credentials for an access token.
type Authenticator struct {
	config     clientcredentials.Config
	httpClient *http.Client
}

// NewAuthenticator creates an Authenticator for cfg. A nil httpClient uses
// http.DefaultTransport.
func NewAuthenticator(cfg Config, httpClient *http.Client) *Authenticator {
	base := http.DefaultTransport
	if httpClient != nil && httpClient.Transport != nil {
		base = httpClient.Transport
	}

	return &Authenticator{
		config: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     strings.TrimRight(cfg.Host(), "/") + AuthPath,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: &http.Client{
			Timeout: authTimeout,
			Transport: &merchantRoundTripper{
				merchantID: cfg.AccountNumber,
				next:       base,
			},
		},
	}
}

// Authenticate implements tokenstore.Authenticator.
func (a *Authenticator) Authenticate(ctx context.Context) (*tokenstore.AuthToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	tok, err := a.config.Token(ctx)
	if err != nil {
		return nil, authError(err)
	}

	return &tokenstore.AuthToken{
		Value:     tok.AccessToken,
		ExpiresAt: tok.Expiry,
	}, nil
}

func authError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		msg := "Error while authenticating with UPS"
		if retrieveErr.Response != nil {
			if parsed := ParseError(retrieveErr.Response.StatusCode, retrieveErr.Body); parsed.Code != genericErrorCode {
				msg = fmt.Sprintf("%s: %s", msg, parsed.Message)
			} else if desc := gjson.GetBytes(retrieveErr.Body, "error_description").String(); desc != "" {
				msg = fmt.Sprintf("%s: %s", msg, desc)
			}
			return shipper.NewAuthError(carrierName, msg).
				WithStatusCode(retrieveErr.Response.StatusCode).
				WithCause(err)
		}
		return shipper.NewAuthError(carrierName, msg).WithCause(err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return shipper.NewConnectivityError(carrierName, "Error while querying UPS endpoint "+AuthPath).WithCause(err)
	}

	return shipper.NewAuthError(carrierName, "Error while authenticating with UPS").WithCause(err)
}

// merchantRoundTripper adds the x-merchant-id header UPS requires on the
// token request.
type merchantRoundTripper struct {
	merchantID string
	next       http.RoundTripper
}

func (rt *merchantRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.merchantID == "" {
		return rt.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("x-merchant-id", rt.merchantID)
	return rt.next.RoundTrip(r)
}

var _ tokenstore.Authenticator = (*Authenticator)(nil)
