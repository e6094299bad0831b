// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mattermost/mattermost/server/public/shared/mlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mattermost/googlechat-mcp/mcpserver/auth"
	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
	"github.com/mattermost/googlechat-mcp/mcpserver/metrics"
	"github.com/mattermost/googlechat-mcp/mcpserver/render"
	"github.com/mattermost/googlechat-mcp/mcpserver/tools"
)

const (
	serverName    = "googlechat-mcp-server"
	serverVersion = "0.1.0"
)

// GoogleChatMCPServer wires the Chat API client, renderer and tool registry
// into an mcp-go server and serves it over the configured transport
type GoogleChatMCPServer struct {
	mcpServer *server.MCPServer
	client    *chatapi.Client
	registry  *prometheus.Registry
	logger    mlog.LoggerIFace
	config    Config
}

// NewGoogleChatMCPServer creates a new Google Chat MCP server with the specified configuration
func NewGoogleChatMCPServer(config Config, resolver *auth.Resolver, logger mlog.LoggerIFace) (*GoogleChatMCPServer, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if resolver == nil {
		return nil, fmt.Errorf("credential resolver is required")
	}

	location, err := time.LoadLocation(config.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load display timezone: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	client, err := chatapi.NewClient(chatapi.ClientConfig{
		BaseURL:   config.BaseURL,
		Timeout:   config.RequestTimeout,
		UserAgent: serverName + "/" + serverVersion,
	}, resolver.TokenProvider, logger, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Chat client: %w", err)
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	renderer := render.New(render.Options{Location: location})
	tools.NewGoogleChatToolProvider(client, renderer, logger, m).ProvideTools(mcpServer)

	s := &GoogleChatMCPServer{
		mcpServer: mcpServer,
		client:    client,
		registry:  registry,
		logger:    logger,
		config:    config,
	}

	if config.ValidateAtStartup {
		if err := s.validateCredentials(context.Background()); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// validateCredentials resolves the credentials and acquires one token so
// that configuration problems surface before the first tool call
func (s *GoogleChatMCPServer) validateCredentials(ctx context.Context) error {
	provider, err := s.client.Init(ctx)
	if err != nil {
		return fmt.Errorf("startup token validation failed: %w", err)
	}
	if _, err := provider.Token(ctx); err != nil {
		return fmt.Errorf("startup token validation failed: %w", err)
	}
	s.logger.Debug("credentials validated")
	return nil
}

// Serve starts the server using the configured transport and blocks until
// ctx is cancelled or the transport fails
func (s *GoogleChatMCPServer) Serve(ctx context.Context) error {
	switch s.config.Transport {
	case TransportStdio:
		return s.serveStdio(ctx)
	case TransportHTTP:
		return s.serveHTTP(ctx)
	default:
		return fmt.Errorf("unsupported transport type: %s", s.config.Transport)
	}
}

// GetMCPServer returns the underlying mcp-go server
func (s *GoogleChatMCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// Config returns the effective configuration
func (s *GoogleChatMCPServer) Config() Config {
	return s.config
}
