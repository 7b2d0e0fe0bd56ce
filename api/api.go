// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package api provides the HTTP/JSON client used to reach the pinpon
// backend, plus a small client for the engine's own callback surface. All
// field names on the wire are snake_case and unknown fields are ignored.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultBackendAddress is the backend base URL used when
	// PINPON_BACKEND_ADDR is unset.
	DefaultBackendAddress = "http://127.0.0.1:8080"

	// DefaultEngineAddress is the engine callback base URL used by the CLI
	// when PINPON_ENGINE_ADDR is unset.
	DefaultEngineAddress = "http://127.0.0.1:8082"

	// DefaultTimeout bounds one whole request/response exchange.
	DefaultTimeout = 30 * time.Second

	// defaultDialTimeout bounds establishing the TCP connection.
	defaultDialTimeout = 10 * time.Second
)

// Environment variables read by DefaultConfig.
const (
	EnvBackendAddress   = "PINPON_BACKEND_ADDR"
	EnvEngineAddress    = "PINPON_ENGINE_ADDR"
	EnvAuthTokenURL     = "PINPON_AUTH_TOKEN_URL"
	EnvAuthRealm        = "PINPON_AUTH_REALM"
	EnvAuthClientID     = "PINPON_AUTH_CLIENT_ID"
	EnvAuthClientSecret = "PINPON_AUTH_CLIENT_SECRET"
	EnvAuthToken        = "PINPON_AUTH_TOKEN"
)

// Config is used to configure the creation of a client.
type Config struct {
	// Address is the base URL of the service to reach.
	Address string

	// Timeout bounds one request/response exchange. Defaults to
	// DefaultTimeout when zero.
	Timeout time.Duration

	// AuthTokenURL is the OIDC token endpoint, or the bare auth server URL
	// when AuthRealm is also set (the keycloak realm layout is then
	// assumed). Leave empty to disable authentication.
	AuthTokenURL string

	// AuthRealm names the keycloak realm used to derive the token endpoint
	// from a bare AuthTokenURL.
	AuthRealm string

	// AuthClientID and AuthClientSecret are the client-credentials grant
	// identity.
	AuthClientID string

	AuthClientSecret string

	// AuthToken short-circuits token acquisition with a fixed bearer
	// token. Useful for tests and local development.
	AuthToken string

	// HTTPClient is the client to use. A pooled client with sane timeouts
	// is built when nil.
	HTTPClient *http.Client
}

// DefaultConfig returns a backend client configuration seeded from the
// PINPON_* environment.
func DefaultConfig() *Config {
	config := &Config{
		Address: DefaultBackendAddress,
		Timeout: DefaultTimeout,
	}
	if addr := os.Getenv(EnvBackendAddress); addr != "" {
		config.Address = addr
	}
	if v := os.Getenv(EnvAuthTokenURL); v != "" {
		config.AuthTokenURL = v
	}
	if v := os.Getenv(EnvAuthRealm); v != "" {
		config.AuthRealm = v
	}
	if v := os.Getenv(EnvAuthClientID); v != "" {
		config.AuthClientID = v
	}
	if v := os.Getenv(EnvAuthClientSecret); v != "" {
		config.AuthClientSecret = v
	}
	if v := os.Getenv(EnvAuthToken); v != "" {
		config.AuthToken = v
	}
	return config
}

// DefaultEngineConfig returns an engine callback client configuration
// seeded from the PINPON_* environment. The engine callback surface is
// unauthenticated, so no auth settings are read.
func DefaultEngineConfig() *Config {
	config := &Config{
		Address: DefaultEngineAddress,
		Timeout: DefaultTimeout,
	}
	if addr := os.Getenv(EnvEngineAddress); addr != "" {
		config.Address = addr
	}
	return config
}

// defaultHTTPClient builds the pooled client used when the caller does not
// bring their own.
func defaultHTTPClient(timeout time.Duration) *http.Client {
	httpClient := cleanhttp.DefaultPooledClient()
	transport := httpClient.Transport.(*http.Transport)
	transport.DialContext = (&net.Dialer{
		Timeout:   defaultDialTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	httpClient.Timeout = timeout
	return httpClient
}

// Client provides a client to either the backend or the engine callback
// API, depending on the configured address.
type Client struct {
	config      Config
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

// NewClient returns a new client. Only Address is required; everything else
// falls back to usable defaults. The environment is not consulted here, use
// DefaultConfig for that.
func NewClient(config *Config) (*Client, error) {
	conf := *config
	if conf.Address == "" {
		conf.Address = DefaultBackendAddress
	} else if _, err := url.Parse(conf.Address); err != nil {
		return nil, fmt.Errorf("invalid address '%s': %v", conf.Address, err)
	}
	if conf.Timeout == 0 {
		conf.Timeout = DefaultTimeout
	}

	httpClient := conf.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient(conf.Timeout)
	}

	client := &Client{
		config:     conf,
		httpClient: httpClient,
	}
	if conf.AuthToken == "" && conf.AuthTokenURL != "" && conf.AuthClientID != "" {
		client.tokenSource = oidcTokenSource(&conf, httpClient)
	}
	return client, nil
}

// Address returns the base address the client targets.
func (c *Client) Address() string {
	return c.config.Address
}

// oidcTokenSource builds a cached, self-refreshing client-credentials token
// source that performs its token requests on our own HTTP client.
func oidcTokenSource(config *Config, httpClient *http.Client) oauth2.TokenSource {
	cc := &clientcredentials.Config{
		ClientID:     config.AuthClientID,
		ClientSecret: config.AuthClientSecret,
		TokenURL:     tokenEndpoint(config.AuthTokenURL, config.AuthRealm),
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	return cc.TokenSource(ctx)
}

// tokenEndpoint derives the keycloak realm token endpoint when given a bare
// auth server URL, and passes full token endpoints through untouched.
func tokenEndpoint(tokenURL, realm string) string {
	if realm == "" || strings.Contains(tokenURL, "/protocol/openid-connect/token") {
		return tokenURL
	}
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token",
		strings.TrimSuffix(tokenURL, "/"), realm)
}

func (c *Client) setAuth(req *http.Request) error {
	if c.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
		return nil
	}
	if c.tokenSource == nil {
		return nil
	}
	token, err := c.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("failed to obtain auth token: %w", err)
	}
	token.SetAuthHeader(req)
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	reqURL := strings.TrimSuffix(c.config.Address, "/") + endpoint
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.setAuth(req); err != nil {
		return nil, err
	}
	return req, nil
}

// query performs a GET against endpoint and decodes the response into out.
func (c *Client) query(ctx context.Context, endpoint string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := requireOK(c.httpClient.Do(req))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeBody(resp, out)
}

// post performs a POST with a JSON body against endpoint, decoding the
// response into out when out is non-nil.
func (c *Client) post(ctx context.Context, endpoint string, in, out interface{}) error {
	return c.write(ctx, http.MethodPost, endpoint, in, out)
}

// patch performs a PATCH with a JSON body against endpoint, decoding the
// response into out when out is non-nil.
func (c *Client) patch(ctx context.Context, endpoint string, in, out interface{}) error {
	return c.write(ctx, http.MethodPatch, endpoint, in, out)
}

func (c *Client) write(ctx context.Context, method, endpoint string, in, out interface{}) error {
	body, err := encodeBody(in)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	resp, err := requireStatusIn(http.StatusOK, http.StatusCreated)(c.httpClient.Do(req))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeBody(resp, out)
}

// encodeBody prepares the reader to serve as a request body.
func encodeBody(obj interface{}) (io.Reader, error) {
	if obj == nil {
		return nil, nil
	}
	if reader, ok := obj.(io.Reader); ok {
		return reader, nil
	}
	buf := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buf)
	if err := enc.Encode(obj); err != nil {
		return nil, err
	}
	return buf, nil
}

// decodeBody decodes the response body into out.
func decodeBody(resp *http.Response, out interface{}) error {
	switch resp.ContentLength {
	case 0:
		if out == nil {
			return nil
		}
		return errors.New("got 0 byte response with non-nil decode object")
	default:
		dec := json.NewDecoder(resp.Body)
		return dec.Decode(out)
	}
}
