// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package tools

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mattermost/mattermost/server/public/shared/mlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattermost/googlechat-mcp/mcpserver/auth"
	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
	"github.com/mattermost/googlechat-mcp/mcpserver/render"
	"github.com/mattermost/googlechat-mcp/mcpserver/testhelpers"
)

type toolsSuite struct {
	fake   *testhelpers.FakeChatAPI
	server *server.MCPServer
	data   testhelpers.TestData
}

func setupTools(t *testing.T) *toolsSuite {
	t.Helper()
	logger := mlog.CreateTestLogger(t)
	fake := testhelpers.NewFakeChatAPI(t)

	client, err := chatapi.NewClient(chatapi.ClientConfig{BaseURL: fake.BaseURL()}, func(ctx context.Context) (auth.TokenProvider, error) {
		return auth.StaticTokenProvider("test-token"), nil
	}, logger, nil)
	require.NoError(t, err)

	mcpServer := server.NewMCPServer("googlechat-test", "0.0.1", server.WithToolCapabilities(true))
	NewGoogleChatToolProvider(client, render.New(render.Options{}), logger, nil).ProvideTools(mcpServer)

	return &toolsSuite{fake: fake, server: mcpServer, data: testhelpers.DefaultTestData()}
}

func TestToolRegistration(t *testing.T) {
	s := setupTools(t)
	tools := testhelpers.ListMCPTools(t, s.server)
	assert.Len(t, tools, 21)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "chat_list_spaces")
	assert.Contains(t, names, "chat_create_message")
	assert.Contains(t, names, "chat_upload_attachment")
}

func TestListSpaces(t *testing.T) {
	t.Run("default page size and bearer token", func(t *testing.T) {
		s := setupTools(t)
		s.fake.Respond(http.MethodGet, "spaces", http.StatusOK, testhelpers.ListJSON(t, "spaces", "",
			testhelpers.SpaceJSON(t, "spaces/A", "Alpha", ""),
		))

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_list_spaces", map[string]any{})
		require.False(t, result.IsError, testhelpers.ResultText(t, result))

		req := s.fake.LastRequest(t)
		assert.Equal(t, "25", req.Query.Get("pageSize"))
		assert.Empty(t, req.Query.Get("pageToken"))
		assert.Equal(t, "Bearer test-token", req.Authorization)
		assert.True(t, strings.HasPrefix(testhelpers.ResultText(t, result), "# Spaces (1)"))
	})

	t.Run("long descriptions are clipped in the list", func(t *testing.T) {
		s := setupTools(t)
		description := strings.Repeat("d", 150)
		s.fake.Respond(http.MethodGet, "spaces", http.StatusOK, testhelpers.ListJSON(t, "spaces", "NEXT",
			testhelpers.SpaceJSON(t, "spaces/A", "Alpha", description),
			testhelpers.SpaceJSON(t, "spaces/B", "Beta", description),
			testhelpers.SpaceJSON(t, "spaces/C", "Gamma", description),
		))

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_list_spaces", map[string]any{"pageSize": 3, "pageToken": "PREV"})
		require.False(t, result.IsError)

		text := testhelpers.ResultText(t, result)
		assert.True(t, strings.HasPrefix(text, "# Spaces (3)\n\n## 1. Alpha"), text)
		assert.Equal(t, 3, strings.Count(text, "- **Description:** "+strings.Repeat("d", 100)+"...\n"))
		assert.NotContains(t, text, strings.Repeat("d", 101))
		assert.True(t, strings.HasSuffix(text, "More results available. Use pageToken: `NEXT`"), text)

		req := s.fake.LastRequest(t)
		assert.Equal(t, "3", req.Query.Get("pageSize"))
		assert.Equal(t, "PREV", req.Query.Get("pageToken"))

		// The structured echo keeps the full description
		structured := testhelpers.StructuredJSON(t, result)
		assert.Contains(t, structured, description)
		assert.Contains(t, structured, `"nextPageToken":"NEXT"`)
	})

	t.Run("json format", func(t *testing.T) {
		s := setupTools(t)
		s.fake.Respond(http.MethodGet, "spaces", http.StatusOK, `{"spaces":[{"name":"spaces/A","displayName":"A & B","futureField":1}]}`)

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_list_spaces", map[string]any{"responseFormat": "json"})
		require.False(t, result.IsError)

		expected := "{\n" +
			"  \"count\": 1,\n" +
			"  \"spaces\": [\n" +
			"    {\n" +
			"      \"name\": \"spaces/A\",\n" +
			"      \"displayName\": \"A & B\",\n" +
			"      \"futureField\": 1\n" +
			"    }\n" +
			"  ],\n" +
			"  \"hasMore\": false\n" +
			"}"
		assert.Equal(t, expected, testhelpers.ResultText(t, result))
	})
}

func TestInvalidArguments(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		expected string
	}{
		{
			name:     "page size above maximum",
			tool:     "chat_list_spaces",
			args:     map[string]any{"pageSize": 500},
			expected: "Error: Invalid parameters: pageSize must be at most 100",
		},
		{
			name:     "page size zero",
			tool:     "chat_list_spaces",
			args:     map[string]any{"pageSize": 0},
			expected: "Error: Invalid parameters: pageSize must be at least 1",
		},
		{
			name:     "missing space name",
			tool:     "chat_get_space",
			args:     map[string]any{},
			expected: "Error: Invalid parameters: spaceName is required",
		},
		{
			name:     "bad resource name",
			tool:     "chat_get_space",
			args:     map[string]any{"spaceName": "rooms/1"},
			expected: "Error: Invalid parameters: spaceName must start with \"spaces/\"",
		},
		{
			name:     "unknown response format",
			tool:     "chat_get_space",
			args:     map[string]any{"spaceName": "spaces/A", "responseFormat": "xml"},
			expected: "Error: Invalid parameters: responseFormat must be one of: markdown, json",
		},
		{
			name:     "update with nothing to change",
			tool:     "chat_update_space",
			args:     map[string]any{"spaceName": "spaces/A"},
			expected: "Error: Invalid parameters: at least one of displayName, description, guidelines or spaceHistoryState must be provided",
		},
		{
			name:     "named space without display name",
			tool:     "chat_create_space",
			args:     map[string]any{},
			expected: "Error: Invalid parameters: displayName is required when spaceType is SPACE",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := setupTools(t)
			result := testhelpers.ExecuteMCPTool(t, s.server, tc.tool, tc.args)

			assert.True(t, result.IsError)
			assert.Equal(t, tc.expected, testhelpers.ResultText(t, result))
			assert.Nil(t, result.StructuredContent)
			assert.Empty(t, s.fake.Requests(), "No request should be sent for invalid arguments")
		})
	}
}

func TestUpstreamErrors(t *testing.T) {
	s := setupTools(t)

	result := testhelpers.ExecuteMCPTool(t, s.server, "chat_get_space", map[string]any{"spaceName": "spaces/missing"})
	assert.True(t, result.IsError)
	assert.Equal(t, "Error: Resource not found - Requested entity was not found.. Please check that the resource name is correct.", testhelpers.ResultText(t, result))
	assert.Nil(t, result.StructuredContent)

	s.fake.Respond(http.MethodGet, "spaces", http.StatusForbidden, `{"error":{"code":403,"message":"Caller lacks scope"}}`)
	result = testhelpers.ExecuteMCPTool(t, s.server, "chat_list_spaces", map[string]any{})
	assert.True(t, result.IsError)
	assert.Equal(t, "Error: Permission denied - Caller lacks scope. Please ensure the credentials have the required Google Chat API scopes.", testhelpers.ResultText(t, result))
}

func TestSpaceMutations(t *testing.T) {
	t.Run("update builds the field mask", func(t *testing.T) {
		s := setupTools(t)
		s.fake.Respond(http.MethodPatch, "spaces/A", http.StatusOK, testhelpers.SpaceJSON(t, "spaces/A", "Renamed", "New"))

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_update_space", map[string]any{
			"spaceName":   "spaces/A",
			"displayName": "Renamed",
			"description": "New",
		})
		require.False(t, result.IsError, testhelpers.ResultText(t, result))

		req := s.fake.LastRequest(t)
		assert.Equal(t, "displayName,spaceDetails.description", req.Query.Get("updateMask"))
		body := req.JSONBody(t)
		assert.Equal(t, "Renamed", body["displayName"])
		assert.Equal(t, map[string]any{"description": "New"}, body["spaceDetails"])
		assert.NotContains(t, body, "spaceHistoryState")
	})

	t.Run("create sends request id as a query parameter", func(t *testing.T) {
		s := setupTools(t)
		s.fake.Respond(http.MethodPost, "spaces", http.StatusOK, testhelpers.SpaceJSON(t, "spaces/N", "Launch", ""))

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_create_space", map[string]any{
			"displayName": "Launch",
			"requestId":   "req-1",
		})
		require.False(t, result.IsError, testhelpers.ResultText(t, result))

		req := s.fake.LastRequest(t)
		assert.Equal(t, "req-1", req.Query.Get("requestId"))
		assert.Equal(t, map[string]any{"displayName": "Launch", "spaceType": "SPACE"}, req.JSONBody(t))
		assert.Equal(t, "# Space: Launch\n\n**Name:** spaces/N\n**Type:** Space", testhelpers.ResultText(t, result))
	})

	t.Run("delete echoes the input name", func(t *testing.T) {
		s := setupTools(t)
		s.fake.Respond(http.MethodDelete, "spaces/A", http.StatusOK, `{}`)

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_delete_space", map[string]any{"spaceName": "spaces/A", "responseFormat": "json"})
		require.False(t, result.IsError)
		assert.Equal(t, "{\n  \"deleted\": true,\n  \"spaceName\": \"spaces/A\"\n}", testhelpers.ResultText(t, result))

		result = testhelpers.ExecuteMCPTool(t, s.server, "chat_delete_space", map[string]any{"spaceName": "spaces/A"})
		require.False(t, result.IsError)
		assert.Equal(t, "Successfully deleted space `spaces/A`.", testhelpers.ResultText(t, result))
		assert.Equal(t, `{"deleted":true,"spaceName":"spaces/A"}`, testhelpers.StructuredJSON(t, result))
	})

	t.Run("search uses admin access", func(t *testing.T) {
		s := setupTools(t)
		s.fake.Respond(http.MethodGet, "spaces:search", http.StatusOK, `{"spaces":[]}`)

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_search_spaces", map[string]any{"query": `spaceType = "SPACE"`})
		require.False(t, result.IsError)
		assert.Equal(t, "No spaces found.", testhelpers.ResultText(t, result))

		req := s.fake.LastRequest(t)
		assert.Equal(t, "true", req.Query.Get("useAdminAccess"))
		assert.Equal(t, `spaceType = "SPACE"`, req.Query.Get("query"))
	})

	t.Run("find direct message", func(t *testing.T) {
		s := setupTools(t)
		s.fake.Respond(http.MethodGet, "spaces:findDirectMessage", http.StatusOK, `{"name":"spaces/DM","spaceType":"DIRECT_MESSAGE"}`)

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_find_direct_message", map[string]any{"userName": s.data.UserName})
		require.False(t, result.IsError)
		assert.Equal(t, s.data.UserName, s.fake.LastRequest(t).Query.Get("name"))
		assert.True(t, strings.HasPrefix(testhelpers.ResultText(t, result), "# Space: Direct Message"))
	})
}

func TestCreateMessage(t *testing.T) {
	t.Run("thread fields form one thread object", func(t *testing.T) {
		s := setupTools(t)
		path := s.data.SpaceName + "/messages"
		s.fake.Respond(http.MethodPost, path, http.StatusOK, testhelpers.MessageJSON(t, s.data.MessageName, s.data.UserName, "hello"))

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_create_message", map[string]any{
			"spaceName":  s.data.SpaceName,
			"text":       "hello",
			"threadKey":  "k1",
			"threadName": s.data.SpaceName + "/threads/t1",
		})
		require.False(t, result.IsError, testhelpers.ResultText(t, result))

		req := s.fake.LastRequest(t)
		assert.Equal(t, path, req.Path)
		assert.Equal(t, map[string]any{
			"text":   "hello",
			"thread": map[string]any{"threadKey": "k1", "name": s.data.SpaceName + "/threads/t1"},
		}, req.JSONBody(t))
		assert.NotContains(t, req.Query, "messageReplyOption")
	})

	t.Run("reply option only when supplied", func(t *testing.T) {
		s := setupTools(t)
		path := s.data.SpaceName + "/messages"
		s.fake.Respond(http.MethodPost, path, http.StatusOK, testhelpers.MessageJSON(t, s.data.MessageName, s.data.UserName, "hi"))

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_create_message", map[string]any{
			"spaceName":          s.data.SpaceName,
			"text":               "hi",
			"threadKey":          "k1",
			"messageReplyOption": "REPLY_MESSAGE_OR_FAIL",
		})
		require.False(t, result.IsError, testhelpers.ResultText(t, result))

		req := s.fake.LastRequest(t)
		assert.Equal(t, "REPLY_MESSAGE_OR_FAIL", req.Query.Get("messageReplyOption"))
		assert.Equal(t, map[string]any{"threadKey": "k1"}, req.JSONBody(t)["thread"])
	})
}

func TestMessageUpdatesAndDeletes(t *testing.T) {
	s := setupTools(t)
	s.fake.Respond(http.MethodPatch, s.data.MessageName, http.StatusOK, testhelpers.MessageJSON(t, s.data.MessageName, s.data.UserName, "edited"))
	s.fake.Respond(http.MethodDelete, s.data.MessageName, http.StatusOK, `{}`)

	result := testhelpers.ExecuteMCPTool(t, s.server, "chat_update_message", map[string]any{"messageName": s.data.MessageName, "text": "edited"})
	require.False(t, result.IsError, testhelpers.ResultText(t, result))
	req := s.fake.LastRequest(t)
	assert.Equal(t, "text", req.Query.Get("updateMask"))
	assert.Equal(t, map[string]any{"text": "edited"}, req.JSONBody(t))

	result = testhelpers.ExecuteMCPTool(t, s.server, "chat_delete_message", map[string]any{"messageName": s.data.MessageName, "force": true})
	require.False(t, result.IsError)
	assert.Equal(t, "true", s.fake.LastRequest(t).Query.Get("force"))
	assert.Equal(t, `{"deleted":true,"messageName":"`+s.data.MessageName+`"}`, testhelpers.StructuredJSON(t, result))
}

func TestMembers(t *testing.T) {
	t.Run("user member", func(t *testing.T) {
		s := setupTools(t)
		path := s.data.SpaceName + "/members"
		s.fake.Respond(http.MethodPost, path, http.StatusOK, testhelpers.MembershipJSON(t, s.data.MemberName, s.data.UserName, "Ada"))

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_create_member", map[string]any{
			"spaceName": s.data.SpaceName,
			"userName":  s.data.UserName,
		})
		require.False(t, result.IsError, testhelpers.ResultText(t, result))
		assert.Equal(t, map[string]any{
			"member": map[string]any{"name": s.data.UserName, "type": "HUMAN"},
		}, s.fake.LastRequest(t).JSONBody(t))
	})

	t.Run("exactly one member kind", func(t *testing.T) {
		s := setupTools(t)
		for _, args := range []map[string]any{
			{"spaceName": s.data.SpaceName},
			{"spaceName": s.data.SpaceName, "userName": s.data.UserName, "groupName": "groups/1"},
		} {
			result := testhelpers.ExecuteMCPTool(t, s.server, "chat_create_member", args)
			assert.True(t, result.IsError)
			assert.True(t, strings.HasPrefix(testhelpers.ResultText(t, result), "Error: Invalid parameters: "))
		}
		assert.Empty(t, s.fake.Requests())
	})

	t.Run("list", func(t *testing.T) {
		s := setupTools(t)
		s.fake.Respond(http.MethodGet, s.data.SpaceName+"/members", http.StatusOK, testhelpers.ListJSON(t, "memberships", "",
			testhelpers.MembershipJSON(t, s.data.MemberName, s.data.UserName, "Ada"),
		))

		result := testhelpers.ExecuteMCPTool(t, s.server, "chat_list_members", map[string]any{"spaceName": s.data.SpaceName, "showGroups": true})
		require.False(t, result.IsError)
		assert.True(t, strings.HasPrefix(testhelpers.ResultText(t, result), "# Members (1)"))
		assert.Equal(t, "true", s.fake.LastRequest(t).Query.Get("showGroups"))
	})
}

func TestReactions(t *testing.T) {
	s := setupTools(t)
	path := s.data.MessageName + "/reactions"
	s.fake.Respond(http.MethodPost, path, http.StatusOK, `{"name":"`+path+`/r1","emoji":{"unicode":"👍"},"user":{"name":"users/111"}}`)

	result := testhelpers.ExecuteMCPTool(t, s.server, "chat_create_reaction", map[string]any{"messageName": s.data.MessageName, "unicode": "👍"})
	require.False(t, result.IsError, testhelpers.ResultText(t, result))
	assert.Equal(t, map[string]any{"emoji": map[string]any{"unicode": "👍"}}, s.fake.LastRequest(t).JSONBody(t))

	result = testhelpers.ExecuteMCPTool(t, s.server, "chat_create_reaction", map[string]any{"messageName": s.data.MessageName})
	assert.True(t, result.IsError)
	assert.Len(t, s.fake.Requests(), 1)
}

func TestUploadAttachment(t *testing.T) {
	s := setupTools(t)
	path := s.data.SpaceName + "/attachments:upload"
	s.fake.Respond(http.MethodPost, path, http.StatusOK, `{"attachmentDataRef":{"resourceName":"media/1","attachmentUploadToken":"tok"}}`)

	result := testhelpers.ExecuteMCPTool(t, s.server, "chat_upload_attachment", map[string]any{"spaceName": s.data.SpaceName, "filename": "notes.txt"})
	require.False(t, result.IsError, testhelpers.ResultText(t, result))

	assert.Equal(t, map[string]any{"filename": "notes.txt"}, s.fake.LastRequest(t).JSONBody(t))
	text := testhelpers.ResultText(t, result)
	assert.Contains(t, text, "**Media Resource:** media/1")
	assert.Contains(t, text, "**Upload Token:** tok")
}

func TestDecodeArguments(t *testing.T) {
	v := newValidator()

	var args ListSpacesArgs
	require.NoError(t, decodeArguments(v, nil, &args))
	assert.Nil(t, args.PageSize)
	assert.Equal(t, "25", args.query().Get("pageSize"))

	err := decodeArguments(v, map[string]any{"pageSize": "ten"}, &ListSpacesArgs{})
	var invalid *InvalidArgumentsError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "pageSize must be of type")

	err = decodeArguments(v, map[string]any{"pageSize": 101, "responseFormat": "xml"}, &ListSpacesArgs{})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "responseFormat must be one of: markdown, json; pageSize must be at most 100", invalid.Reason)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "success", outcomeOf(nil))
	assert.Equal(t, "invalid_arguments", outcomeOf(invalidArguments("x")))
	assert.Equal(t, "upstream_error", outcomeOf(&chatapi.UpstreamHTTPError{StatusCode: 500}))
}
