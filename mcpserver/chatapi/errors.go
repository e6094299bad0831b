// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/tidwall/gjson"
)

const unknownUpstreamMessage = "Unknown error"

// UpstreamHTTPError is returned for any non-2xx response.
type UpstreamHTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("google chat api returned status %d: %s", e.StatusCode, e.Message)
}

// upstreamMessage prefers error.message, then a top-level message.
func upstreamMessage(body []byte) string {
	for _, path := range []string{"error.message", "message"} {
		if value := gjson.GetBytes(body, path); value.Type == gjson.String && value.String() != "" {
			return value.String()
		}
	}
	return unknownUpstreamMessage
}

type TransportErrorKind int

const (
	TransportNetwork TransportErrorKind = iota
	TransportTimeout
)

// TransportError is returned when no HTTP response was received.
type TransportError struct {
	Kind TransportErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	if e.Kind == TransportTimeout {
		return fmt.Sprintf("request to google chat api timed out: %v", e.Err)
	}
	return fmt.Sprintf("network error calling google chat api: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isNetworkFailure matches refused connections, unresolved hosts and other
// failures to reach the remote end.
func isNetworkFailure(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var netErr net.Error
	return errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &netErr)
}
