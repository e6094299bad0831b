// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mattermost/mattermost/server/public/shared/mlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattermost/googlechat-mcp/mcpserver/auth"
)

// countingProvider hands out a new token per call.
type countingProvider struct {
	calls atomic.Int32
}

func (p *countingProvider) Token(context.Context) (string, error) {
	n := p.calls.Add(1)
	return "token-" + string(rune('0'+n)), nil
}

func staticInit(provider auth.TokenProvider) ProviderFunc {
	return func(context.Context) (auth.TokenProvider, error) {
		return provider, nil
	}
}

func newTestClient(t *testing.T, baseURL string, init ProviderFunc) *Client {
	client, err := NewClient(ClientConfig{BaseURL: baseURL}, init, mlog.CreateTestLogger(t), nil)
	require.NoError(t, err)
	return client
}

func TestClientAttachesFreshTokenPerRequest(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"name":"spaces/A"}`))
	}))
	defer server.Close()

	provider := &countingProvider{}
	client := newTestClient(t, server.URL+"/v1/", staticInit(provider))

	for i := 0; i < 2; i++ {
		_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "spaces/A"})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"Bearer token-1", "Bearer token-2"}, seen)
}

func TestClientBuildsRequest(t *testing.T) {
	var gotPath, gotQuery, gotBody, gotContentType, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"spaces":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/v1/", staticInit(auth.StaticTokenProvider("t")))

	raw, err := client.Do(context.Background(), Request{
		Method: "post",
		Path:   "spaces:search",
		Query:  url.Values{"query": {`displayName:"Launch"`}},
		Body:   map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"spaces":[]}`, string(raw))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/v1/spaces:search", gotPath)
	assert.Equal(t, "query=displayName%3A%22Launch%22", gotQuery)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"k":"v"}`, gotBody)
}

func TestClientEmptySuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, staticInit(auth.StaticTokenProvider("t")))

	raw, err := client.Do(context.Background(), Request{Method: http.MethodDelete, Path: "spaces/A"})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestClientUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Space not found","status":"NOT_FOUND"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, staticInit(auth.StaticTokenProvider("t")))

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "spaces/missing"})
	var upstream *UpstreamHTTPError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Equal(t, "Space not found", upstream.Message)
}

func TestClientRejectsOversizedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"spaces/AAAA"}`))
	}))
	defer server.Close()

	newClient := func(limit int64) *Client {
		client, err := NewClient(ClientConfig{BaseURL: server.URL, MaxResponseBytes: limit}, staticInit(auth.StaticTokenProvider("t")), mlog.CreateTestLogger(t), nil)
		require.NoError(t, err)
		return client
	}

	_, err := newClient(10).Do(context.Background(), Request{Method: http.MethodGet, Path: "spaces/AAAA"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response too large")
	assert.Equal(t, "Error: Unexpected error: response too large: body exceeds 10 bytes", Classify(err))

	// A body exactly at the limit is accepted whole
	raw, err := newClient(int64(len(`{"name":"spaces/AAAA"}`))).Do(context.Background(), Request{Method: http.MethodGet, Path: "spaces/AAAA"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"spaces/AAAA"}`, string(raw))
}

func TestClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond},
		staticInit(auth.StaticTokenProvider("t")), mlog.CreateTestLogger(t), nil)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "spaces"})
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, TransportTimeout, transport.Kind)
	assert.Equal(t, "Error: Request timed out. Please try again.", Classify(err))
}

func TestClientConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := newTestClient(t, baseURL, staticInit(auth.StaticTokenProvider("t")))

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "spaces"})
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, TransportNetwork, transport.Kind)
	assert.Equal(t, "Error: Network error - unable to reach the Google Chat API. Please check your connection.", Classify(err))
}

func TestClientTokenFailureIsNotTransport(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := newTestClient(t, server.URL, staticInit(auth.StaticTokenProvider("")))

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "spaces"})
	var expired *auth.AuthExpiredError
	require.True(t, errors.As(err, &expired))

	var transport *TransportError
	assert.False(t, errors.As(err, &transport))
}

func TestClientInitializesOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var inits atomic.Int32
	client := newTestClient(t, server.URL, func(context.Context) (auth.TokenProvider, error) {
		inits.Add(1)
		time.Sleep(10 * time.Millisecond)
		return auth.StaticTokenProvider("t"), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "spaces"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inits.Load())
}

func TestClientInitFailureIsMemoized(t *testing.T) {
	initErr := &auth.ConfigurationError{Kind: auth.MissingCredentials}
	var inits atomic.Int32
	client := newTestClient(t, "https://chat.example.test/v1/", func(context.Context) (auth.TokenProvider, error) {
		inits.Add(1)
		return nil, initErr
	})

	for i := 0; i < 3; i++ {
		_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "spaces"})
		assert.Same(t, initErr, err)
	}
	assert.Equal(t, int32(1), inits.Load())
}

func TestClientRejectsUnsupportedMethod(t *testing.T) {
	client := newTestClient(t, "https://chat.example.test/v1/", staticInit(auth.StaticTokenProvider("t")))

	_, err := client.Do(context.Background(), Request{Method: "TRACE", Path: "spaces"})
	assert.ErrorContains(t, err, "unsupported HTTP method")
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "not a url"}, staticInit(auth.StaticTokenProvider("t")), mlog.CreateTestLogger(t), nil)
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{}, nil, mlog.CreateTestLogger(t), nil)
	assert.Error(t, err)
}

func TestClientEndpoint(t *testing.T) {
	client := newTestClient(t, DefaultBaseURL, staticInit(auth.StaticTokenProvider("t")))

	assert.Equal(t, "https://chat.googleapis.com/v1/spaces/AAA/messages", client.endpoint("spaces/AAA/messages", nil))
	assert.Equal(t, "https://chat.googleapis.com/v1/spaces:findDirectMessage?name=users%2F123",
		client.endpoint("spaces:findDirectMessage", url.Values{"name": {"users/123"}}))
}

