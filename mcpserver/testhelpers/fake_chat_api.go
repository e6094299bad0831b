// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package testhelpers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// RecordedRequest is one request received by the fake API
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Body          []byte
	Authorization string
}

// JSONBody decodes the request body as a JSON object
func (r RecordedRequest) JSONBody(t *testing.T) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(r.Body, &body), "Request body should be a JSON object")
	return body
}

type fakeResponse struct {
	status int
	body   string
}

// FakeChatAPI is an httptest server standing in for chat.googleapis.com.
// Unregistered routes answer 404 in the Google error format.
type FakeChatAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	routes   map[string]fakeResponse
	requests []RecordedRequest
}

func NewFakeChatAPI(t *testing.T) *FakeChatAPI {
	f := &FakeChatAPI{routes: map[string]fakeResponse{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the value to configure as the Chat API base URL
func (f *FakeChatAPI) BaseURL() string {
	return f.Server.URL + "/v1/"
}

// Respond registers the response for a method and resource path
func (f *FakeChatAPI) Respond(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = fakeResponse{status: status, body: body}
}

// Requests returns every request received so far
func (f *FakeChatAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastRequest returns the most recent request, failing if there is none
func (f *FakeChatAPI) LastRequest(t *testing.T) RecordedRequest {
	requests := f.Requests()
	require.NotEmpty(t, requests, "Expected the fake Chat API to receive a request")
	return requests[len(requests)-1]
}

func (f *FakeChatAPI) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/v1/")

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        r.Method,
		Path:          path,
		Query:         r.URL.Query(),
		Body:          body,
		Authorization: r.Header.Get("Authorization"),
	})
	resp, ok := f.routes[r.Method+" "+path]
	f.mu.Unlock()

	if !ok {
		resp = fakeResponse{
			status: http.StatusNotFound,
			body:   `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
