// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mattermost/mattermost/server/public/shared/mlog"

	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
	"github.com/mattermost/googlechat-mcp/mcpserver/metrics"
	"github.com/mattermost/googlechat-mcp/mcpserver/render"
)

// ToolContext carries the shared collaborators a resolver needs.
type ToolContext struct {
	Client    chatapi.Doer
	Renderer  *render.Renderer
	RequestID string
}

// ArgumentGetter decodes and validates the call's arguments into target.
type ArgumentGetter func(target any) error

// ToolResolver implements one tool: a single dispatch and a single render.
type ToolResolver func(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error)

// MCPTool represents a tool before conversion to the mcp-go type
type MCPTool struct {
	Name        string
	Description string
	Schema      interface{}
	Resolver    ToolResolver
}

type ToolProvider interface {
	ProvideTools(*server.MCPServer)
}

// GoogleChatToolProvider registers the Google Chat tools on an MCP server.
type GoogleChatToolProvider struct {
	client   chatapi.Doer
	renderer *render.Renderer
	validate *validator.Validate
	logger   mlog.LoggerIFace
	metrics  *metrics.Metrics
}

func NewGoogleChatToolProvider(client chatapi.Doer, renderer *render.Renderer, logger mlog.LoggerIFace, m *metrics.Metrics) *GoogleChatToolProvider {
	return &GoogleChatToolProvider{
		client:   client,
		renderer: renderer,
		validate: newValidator(),
		logger:   logger,
		metrics:  m,
	}
}

// Tools returns every tool definition, grouped by resource.
func (p *GoogleChatToolProvider) Tools() []MCPTool {
	mcpTools := []MCPTool{}
	mcpTools = append(mcpTools, p.getSpaceTools()...)
	mcpTools = append(mcpTools, p.getMessageTools()...)
	mcpTools = append(mcpTools, p.getMemberTools()...)
	mcpTools = append(mcpTools, p.getReactionTools()...)
	mcpTools = append(mcpTools, p.getAttachmentTools()...)
	return mcpTools
}

// ProvideTools provides all tools to the MCP server by registering them
func (p *GoogleChatToolProvider) ProvideTools(mcpServer *server.MCPServer) {
	for _, mcpTool := range p.Tools() {
		mcpServer.AddTool(p.convertMCPToolToLibMCPTool(mcpTool), p.createMCPToolHandler(mcpTool))
	}
}

// convertMCPToolToLibMCPTool converts our MCPTool to a library mcp.Tool
func (p *GoogleChatToolProvider) convertMCPToolToLibMCPTool(mcpTool MCPTool) mcp.Tool {
	if schema, ok := mcpTool.Schema.(*jsonschema.Schema); ok && schema != nil {
		schemaBytes, err := json.Marshal(schema)
		if err == nil {
			return mcp.NewToolWithRawSchema(mcpTool.Name, mcpTool.Description, schemaBytes)
		}
		p.logger.Warn("Failed to marshal JSON schema for tool", mlog.String("tool", mcpTool.Name), mlog.Err(err))
	}

	// Fallback to basic tool creation without schema
	return mcp.NewTool(mcpTool.Name, mcp.WithDescription(mcpTool.Description))
}

// createMCPToolHandler wraps a resolver so that no failure escapes as a Go
// error: every failure becomes an error result holding only classified text.
func (p *GoogleChatToolProvider) createMCPToolHandler(mcpTool MCPTool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		tc := &ToolContext{
			Client:    p.client,
			Renderer:  p.renderer,
			RequestID: uuid.NewString(),
		}

		argsGetter := func(target any) error {
			return decodeArguments(p.validate, request.GetArguments(), target)
		}

		result, err := mcpTool.Resolver(ctx, tc, argsGetter)
		outcome := outcomeOf(err)
		p.metrics.ObserveToolCall(mcpTool.Name, outcome)

		if err != nil {
			p.logger.Debug("Tool call failed",
				mlog.String("tool", mcpTool.Name),
				mlog.String("request_id", tc.RequestID),
				mlog.String("outcome", outcome),
				mlog.String("duration", time.Since(start).String()),
				mlog.Err(err),
			)
			return errorResult(err), nil
		}

		p.logger.Debug("Tool call completed",
			mlog.String("tool", mcpTool.Name),
			mlog.String("request_id", tc.RequestID),
			mlog.Int("text_length", len(result.Text)),
			mlog.String("duration", time.Since(start).String()),
		)

		return &mcp.CallToolResult{
			Content:           []mcp.Content{mcp.NewTextContent(result.Text)},
			StructuredContent: result.Structured,
		}, nil
	}
}

func errorResult(err error) *mcp.CallToolResult {
	text := chatapi.Classify(err)
	var invalid *InvalidArgumentsError
	if errors.As(err, &invalid) {
		text = "Error: " + invalid.Error()
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
		IsError: true,
	}
}

func outcomeOf(err error) string {
	var invalid *InvalidArgumentsError
	var upstream *chatapi.UpstreamHTTPError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &invalid):
		return metrics.OutcomeInvalidArgument
	case errors.As(err, &upstream):
		return metrics.OutcomeUpstreamError
	default:
		return metrics.OutcomeError
	}
}
