// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package chatapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Classify maps any failure to the fixed agent-facing message for its class.
// Agents match on these strings to decide whether to retry, so they must not
// drift.
func Classify(err error) string {
	if err == nil {
		return "Error: Unexpected error: unknown error"
	}

	var upstream *UpstreamHTTPError
	if errors.As(err, &upstream) {
		return classifyStatus(upstream.StatusCode, upstream.Message)
	}

	var transport *TransportError
	if errors.As(err, &transport) {
		if transport.Kind == TransportTimeout {
			return timeoutMessage
		}
		return networkMessage
	}

	switch {
	case isTimeout(err):
		return timeoutMessage
	case isNetworkFailure(err):
		return networkMessage
	}

	return fmt.Sprintf("Error: Unexpected error: %s", err.Error())
}

const (
	timeoutMessage = "Error: Request timed out. Please try again."
	networkMessage = "Error: Network error - unable to reach the Google Chat API. Please check your connection."
)

func classifyStatus(status int, message string) string {
	switch status {
	case http.StatusBadRequest:
		return fmt.Sprintf("Error: Bad request - %s. Please check your parameters.", message)
	case http.StatusUnauthorized:
		return "Error: Authentication failed. Please check your credentials and permissions."
	case http.StatusForbidden:
		return fmt.Sprintf("Error: Permission denied - %s. Please ensure the credentials have the required Google Chat API scopes.", message)
	case http.StatusNotFound:
		return fmt.Sprintf("Error: Resource not found - %s. Please check that the resource name is correct.", message)
	case http.StatusConflict:
		return fmt.Sprintf("Error: Conflict - %s. The resource may already exist or be in an invalid state.", message)
	case http.StatusTooManyRequests:
		return "Error: Rate limit exceeded. Please wait before making more requests."
	case http.StatusInternalServerError:
		return "Error: Google Chat API server error. Please try again later."
	case http.StatusServiceUnavailable:
		return "Error: Google Chat API is temporarily unavailable. Please try again later."
	default:
		return fmt.Sprintf("Error: API request failed with status %d: %s", status, message)
	}
}
