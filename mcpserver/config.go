// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package mcpserver

import (
	"fmt"
	"time"

	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
)

// Transport names accepted by Config.Transport
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

const DefaultHTTPPort = 3000

// Config represents the configuration for the MCP server
type Config struct {
	// Transport type (stdio, http)
	Transport string `json:"transport"`

	// HTTP port for http transport
	HTTPPort int `json:"http_port"`

	// Google Chat API base URL. Only tests point this anywhere else.
	BaseURL string `json:"base_url,omitempty"`

	// Timeout for each request to the Chat API
	RequestTimeout time.Duration `json:"request_timeout"`

	// IANA zone timestamps are displayed in (e.g., "Europe/Prague")
	DisplayTimezone string `json:"display_timezone"`

	// Resolve credentials and acquire one token before serving
	ValidateAtStartup bool `json:"validate_at_startup"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Transport:         TransportStdio,
		HTTPPort:          DefaultHTTPPort,
		BaseURL:           chatapi.DefaultBaseURL,
		RequestTimeout:    chatapi.DefaultTimeout,
		DisplayTimezone:   "UTC",
		ValidateAtStartup: true,
	}
}

// Validate reports a configuration that cannot be served
func (c Config) Validate() error {
	switch c.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
			return fmt.Errorf("invalid port number %d: must be between 1 and 65535", c.HTTPPort)
		}
	default:
		return fmt.Errorf("unsupported transport type %q: supported transport types are stdio, http", c.Transport)
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		return fmt.Errorf("invalid display timezone %q: %w", c.DisplayTimezone, err)
	}
	return nil
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Transport == "" {
		c.Transport = defaults.Transport
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = defaults.HTTPPort
	}
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaults.RequestTimeout
	}
	if c.DisplayTimezone == "" {
		c.DisplayTimezone = defaults.DisplayTimezone
	}
	return c
}
