// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package testhelpers

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
)

var requestID atomic.Int64

// sendMCPMessage drives the server through its JSON-RPC entry point and
// returns the result payload of a successful response.
func sendMCPMessage(t *testing.T, mcpServer *server.MCPServer, method string, params any) any {
	message, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      requestID.Add(1),
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	response := mcpServer.HandleMessage(context.Background(), message)
	switch r := response.(type) {
	case mcp.JSONRPCResponse:
		return r.Result
	case *mcp.JSONRPCResponse:
		return r.Result
	default:
		encoded, _ := json.Marshal(response)
		require.FailNow(t, "Unexpected JSON-RPC response", string(encoded))
		return nil
	}
}

// ExecuteMCPTool calls a tool through the MCP server
func ExecuteMCPTool(t *testing.T, mcpServer *server.MCPServer, toolName string, args map[string]any) *mcp.CallToolResult {
	result := sendMCPMessage(t, mcpServer, string(mcp.MethodToolsCall), map[string]any{
		"name":      toolName,
		"arguments": args,
	})

	switch r := result.(type) {
	case mcp.CallToolResult:
		return &r
	case *mcp.CallToolResult:
		return r
	default:
		require.FailNow(t, "Unexpected tools/call result type")
		return nil
	}
}

// ListMCPTools returns the tools registered on the MCP server
func ListMCPTools(t *testing.T, mcpServer *server.MCPServer) []mcp.Tool {
	result := sendMCPMessage(t, mcpServer, string(mcp.MethodToolsList), map[string]any{})

	switch r := result.(type) {
	case mcp.ListToolsResult:
		return r.Tools
	case *mcp.ListToolsResult:
		return r.Tools
	default:
		require.FailNow(t, "Unexpected tools/list result type")
		return nil
	}
}

// ResultText returns the text of the first content item
func ResultText(t *testing.T, result *mcp.CallToolResult) string {
	require.NotEmpty(t, result.Content, "Tool result should have content")
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "Tool result content should be text")
	return text.Text
}

// StructuredJSON encodes the structured content of a tool result
func StructuredJSON(t *testing.T, result *mcp.CallToolResult) string {
	require.NotNil(t, result.StructuredContent, "Tool result should have structured content")
	data, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	return string(data)
}
