// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

import (
	"net/http"

	"github.com/mattermost/googlechat-mcp/mcpserver/auth"
)

// bearerTransport obtains a token for every outbound request and adds it,
// along with fixed headers, to a clone of the request.
type bearerTransport struct {
	base     http.RoundTripper
	provider auth.TokenProvider
	headers  map[string]string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.provider.Token(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}

	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	for key, value := range t.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return t.base.RoundTrip(req)
}
