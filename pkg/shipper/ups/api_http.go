package ups

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
	"github.com/vendidero/shiptastic-ups/pkg/tokenstore"
)

const (
	readTimeout  = 30 * time.Second
	writeTimeout = 100 * time.Second
)

// TokenSource hands out bearer tokens and drops rejected ones.
// *tokenstore.Store implements it.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
	Invalidate(ctx context.Context, rejected string)
}

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL           string
	tokens            TokenSource
	auth              tokenstore.Authenticator
	httpClient        *http.Client
	userAgent         string
	transactionSource string
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL           string
	Tokens            TokenSource
	Authenticator     tokenstore.Authenticator
	HTTPClient        *http.Client
	UserAgent         string
	TransactionSource string
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Timeouts are applied per request through the context.
		httpClient = &http.Client{}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "shiptastic-ups/1.0"
	}

	return &HTTPAPIClient{
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		tokens:            cfg.Tokens,
		auth:              cfg.Authenticator,
		httpClient:        httpClient,
		userAgent:         userAgent,
		transactionSource: firstNonEmpty(cfg.TransactionSource, userAgent),
	}
}

// CreateShipment books a shipment.
// POST /api/shipments/v2409/ship
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *LabelRequest) (*APIResponse, error) {
	payload, err := req.Payload()
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodPost, shipPath, payload, nil)
}

// VoidShipment cancels a shipment.
// DELETE /api/shipments/v2409/void/cancel/{tracking}
func (c *HTTPAPIClient) VoidShipment(ctx context.Context, trackingNumber string) (*APIResponse, error) {
	return c.Request(ctx, http.MethodDelete, voidEndpoint(trackingNumber), nil, nil)
}

// LocateAccessPoints searches UPS Access Points.
// POST /api/locations/v3/search/availabilities/64
func (c *HTTPAPIClient) LocateAccessPoints(ctx context.Context, req *LocatorRequest) (*APIResponse, error) {
	payload, err := req.Payload()
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodPost, locatorPath, payload, nil)
}

// TestConnection performs a token exchange without touching the cache.
func (c *HTTPAPIClient) TestConnection(ctx context.Context) error {
	if c.auth == nil {
		_, err := c.tokens.GetToken(ctx)
		return err
	}
	_, err := c.auth.Authenticate(ctx)
	return err
}

// Request performs one API call. A 401 or 403 drops the token and retries
// once with a fresh one. Any other status of 300 or above is returned as a
// carrier error, both in the error and in APIResponse.Err.
func (c *HTTPAPIClient) Request(ctx context.Context, method, path string, body any, headers map[string]string) (*APIResponse, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	resp, token, err := c.doRequest(ctx, method, path, payload, headers)
	if err != nil {
		return nil, err
	}

	if isAuthStatus(resp.StatusCode) && path != AuthPath {
		c.tokens.Invalidate(ctx, token)

		resp, _, err = c.doRequest(ctx, method, path, payload, headers)
		if err != nil {
			return nil, err
		}
		if isAuthStatus(resp.StatusCode) {
			authErr := shipper.NewAuthError(carrierName, "UPS rejected the access token").
				WithStatusCode(resp.StatusCode)
			if parsed := ParseError(resp.StatusCode, resp.Raw); parsed.Code != genericErrorCode {
				authErr.WithEntries(parsed.Entries)
			}
			resp.Err = authErr
			return resp, authErr
		}
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		resp.Err = ParseError(resp.StatusCode, resp.Raw)
		return resp, resp.Err
	}

	return resp, nil
}

// doRequest performs an HTTP request with proper headers and authentication.
// It returns the token the request was sent with.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, payload []byte, headers map[string]string) (*APIResponse, string, error) {
	var token string
	if path != AuthPath {
		var err error
		token, err = c.tokens.GetToken(ctx)
		if err != nil {
			return nil, "", err
		}
	}

	timeout := writeTimeout
	if method == http.MethodGet {
		timeout = readTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("transId", uuid.NewString())
	req.Header.Set("transactionSrc", c.transactionSource)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, token, shipper.NewConnectivityError(carrierName,
			fmt.Sprintf("Error while querying UPS endpoint %s", path)).WithCause(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, token, shipper.NewConnectivityError(carrierName,
			fmt.Sprintf("Error while reading UPS response from %s", path)).WithCause(err)
	}

	return newAPIResponse(res.StatusCode, raw), token, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case interface{ Payload() ([]byte, error) }:
		return b.Payload()
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		return data, nil
	}
}

func isAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
