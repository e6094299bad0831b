// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattermost/mattermost/server/public/shared/mlog"

	"github.com/mattermost/googlechat-mcp/mcpserver/auth"
	"github.com/mattermost/googlechat-mcp/mcpserver/metrics"
)

const (
	DefaultBaseURL = "https://chat.googleapis.com/v1/"
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResponseBytes bounds how much of an upstream body is read.
	DefaultMaxResponseBytes = 32 << 20
)

// Request describes one call to the Chat API. Path is appended to the base
// URL as given, so resource names like "spaces/AAA" or "spaces:search" pass
// through untouched.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Doer is the dispatch operation tools depend on.
type Doer interface {
	Do(ctx context.Context, req Request) (json.RawMessage, error)
}

// ProviderFunc builds the token provider on first use.
type ProviderFunc func(ctx context.Context) (auth.TokenProvider, error)

type ClientConfig struct {
	BaseURL          string
	Timeout          time.Duration
	Transport        http.RoundTripper
	UserAgent        string
	MaxResponseBytes int64
}

// Client is the single dispatch path for every Chat API call. Credential
// resolution and HTTP client setup happen once, on the first call.
type Client struct {
	config       ClientConfig
	initProvider ProviderFunc
	logger       mlog.LoggerIFace
	metrics      *metrics.Metrics

	once       sync.Once
	httpClient *http.Client
	provider   auth.TokenProvider
	initErr    error
}

func NewClient(config ClientConfig, initProvider ProviderFunc, logger mlog.LoggerIFace, m *metrics.Metrics) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", config.BaseURL)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Transport == nil {
		config.Transport = http.DefaultTransport
	}
	if config.MaxResponseBytes <= 0 {
		config.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if config.UserAgent == "" {
		config.UserAgent = "googlechat-mcp"
	}
	if initProvider == nil {
		return nil, errors.New("token provider initializer is required")
	}

	return &Client{
		config:       config,
		initProvider: initProvider,
		logger:       logger,
		metrics:      m,
	}, nil
}

// Init runs the one-time initialization and returns its memoized outcome.
func (c *Client) Init(ctx context.Context) (auth.TokenProvider, error) {
	c.once.Do(func() {
		provider, err := c.initProvider(ctx)
		if err != nil {
			c.initErr = err
			return
		}
		c.provider = provider
		c.httpClient = &http.Client{
			Timeout: c.config.Timeout,
			Transport: &bearerTransport{
				base:     c.config.Transport,
				provider: provider,
				headers: map[string]string{
					"Accept":     "application/json",
					"User-Agent": c.config.UserAgent,
				},
			},
		}
	})
	return c.provider, c.initErr
}

// Do performs one HTTP call and returns the decoded body. There are no
// retries. Cancelling ctx does not abort a request already in flight; the
// client timeout bounds it instead.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	if _, err := c.Init(ctx); err != nil {
		return nil, err
	}

	method, err := checkMethod(req.Method)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		data, marshalErr := json.Marshal(req.Body)
		if marshalErr != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", marshalErr)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(context.WithoutCancel(ctx), method, c.endpoint(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if authErr := asAuthError(err); authErr != nil {
			return nil, authErr
		}
		c.metrics.ObserveUpstream(method, "transport_error", time.Since(start))
		c.logger.Debug("google chat request failed", mlog.String("method", method), mlog.String("path", req.Path), mlog.Err(err))
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()

	// Read one byte past the limit so an oversized body is reported, not cut
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes+1))
	c.metrics.ObserveUpstream(method, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, newTransportError(err)
	}
	if int64(len(data)) > c.config.MaxResponseBytes {
		return nil, fmt.Errorf("response too large: body exceeds %d bytes", c.config.MaxResponseBytes)
	}

	c.logger.Debug("google chat request completed",
		mlog.String("method", method),
		mlog.String("path", req.Path),
		mlog.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamHTTPError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(data),
			Body:       data,
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(data), nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func checkMethod(method string) (string, error) {
	switch m := strings.ToUpper(method); m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported HTTP method %q", method)
	}
}

// asAuthError extracts a token failure raised inside the transport.
func asAuthError(err error) error {
	var expired *auth.AuthExpiredError
	if errors.As(err, &expired) {
		return expired
	}
	var exchange *auth.AuthExchangeError
	if errors.As(err, &exchange) {
		return exchange
	}
	return nil
}

func newTransportError(err error) *TransportError {
	kind := TransportNetwork
	if isTimeout(err) {
		kind = TransportTimeout
	}
	return &TransportError{Kind: kind, Err: err}
}
