// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package tools

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
	"github.com/mattermost/googlechat-mcp/mcpserver/render"
)

// ListSpacesArgs represents arguments for the chat_list_spaces tool
type ListSpacesArgs struct {
	FormatArgs
	PageArgs
	Filter string `json:"filter,omitempty" jsonschema_description:"Optional filter, e.g. 'spaceType = \"SPACE\"' or 'spaceType = \"GROUP_CHAT\" OR spaceType = \"DIRECT_MESSAGE\"'"`
}

// GetSpaceArgs represents arguments for the chat_get_space tool
type GetSpaceArgs struct {
	FormatArgs
	SpaceName string `json:"spaceName" jsonschema_description:"Resource name of the space, e.g. 'spaces/AAAAxxxx'" validate:"required,startswith=spaces/"`
}

// CreateSpaceArgs represents arguments for the chat_create_space tool
type CreateSpaceArgs struct {
	FormatArgs
	DisplayName         string  `json:"displayName,omitempty" jsonschema_description:"Display name of the space. Required for named spaces" validate:"omitempty,max=128"`
	SpaceType           string  `json:"spaceType,omitempty" jsonschema:"enum=SPACE,enum=GROUP_CHAT,default=SPACE" jsonschema_description:"SPACE for a named space or GROUP_CHAT for an unnamed group conversation" validate:"omitempty,oneof=SPACE GROUP_CHAT"`
	Description         *string `json:"description,omitempty" jsonschema_description:"Optional description of the space" validate:"omitempty,max=150"`
	Guidelines          *string `json:"guidelines,omitempty" jsonschema_description:"Optional rules or expectations for the space" validate:"omitempty,max=5000"`
	ExternalUserAllowed *bool   `json:"externalUserAllowed,omitempty" jsonschema_description:"Whether users outside the organization may join"`
	RequestID           string  `json:"requestId,omitempty" jsonschema_description:"Optional idempotency key; repeating a request with the same ID returns the space created by the first one"`
}

// UpdateSpaceArgs represents arguments for the chat_update_space tool
type UpdateSpaceArgs struct {
	FormatArgs
	SpaceName         string  `json:"spaceName" jsonschema_description:"Resource name of the space to update" validate:"required,startswith=spaces/"`
	DisplayName       *string `json:"displayName,omitempty" jsonschema_description:"New display name" validate:"omitempty,min=1,max=128"`
	Description       *string `json:"description,omitempty" jsonschema_description:"New description" validate:"omitempty,max=150"`
	Guidelines        *string `json:"guidelines,omitempty" jsonschema_description:"New guidelines" validate:"omitempty,max=5000"`
	SpaceHistoryState *string `json:"spaceHistoryState,omitempty" jsonschema:"enum=HISTORY_ON,enum=HISTORY_OFF" jsonschema_description:"Whether messages are kept" validate:"omitempty,oneof=HISTORY_ON HISTORY_OFF"`
}

// DeleteSpaceArgs represents arguments for the chat_delete_space tool
type DeleteSpaceArgs struct {
	FormatArgs
	SpaceName string `json:"spaceName" jsonschema_description:"Resource name of the space to delete" validate:"required,startswith=spaces/"`
}

// SearchSpacesArgs represents arguments for the chat_search_spaces tool
type SearchSpacesArgs struct {
	FormatArgs
	PageArgs
	Query   string `json:"query" jsonschema_description:"Search query, e.g. 'customer = \"customers/my_customer\" AND spaceType = \"SPACE\" AND displayName:\"launch\"'" validate:"required"`
	OrderBy string `json:"orderBy,omitempty" jsonschema_description:"Optional ordering, e.g. 'lastActiveTime desc'"`
}

// FindDirectMessageArgs represents arguments for the chat_find_direct_message tool
type FindDirectMessageArgs struct {
	FormatArgs
	UserName string `json:"userName" jsonschema_description:"Resource name of the other user, e.g. 'users/123456789' or 'users/user@example.com'" validate:"required,startswith=users/"`
}

// getSpaceTools returns all space-related tools
func (p *GoogleChatToolProvider) getSpaceTools() []MCPTool {
	return []MCPTool{
		{
			Name:        "chat_list_spaces",
			Description: "List the Google Chat spaces the caller is a member of, with optional filtering and pagination",
			Schema:      NewJSONSchemaFromStruct[ListSpacesArgs](),
			Resolver:    p.toolListSpaces,
		},
		{
			Name:        "chat_get_space",
			Description: "Get details about a Google Chat space by resource name",
			Schema:      NewJSONSchemaFromStruct[GetSpaceArgs](),
			Resolver:    p.toolGetSpace,
		},
		{
			Name:        "chat_create_space",
			Description: "Create a named Google Chat space or an unnamed group chat",
			Schema:      NewJSONSchemaFromStruct[CreateSpaceArgs](),
			Resolver:    p.toolCreateSpace,
		},
		{
			Name:        "chat_update_space",
			Description: "Update a space's display name, description, guidelines or history setting. Only supplied fields are changed",
			Schema:      NewJSONSchemaFromStruct[UpdateSpaceArgs](),
			Resolver:    p.toolUpdateSpace,
		},
		{
			Name:        "chat_delete_space",
			Description: "Permanently delete a space, including its messages and memberships",
			Schema:      NewJSONSchemaFromStruct[DeleteSpaceArgs](),
			Resolver:    p.toolDeleteSpace,
		},
		{
			Name:        "chat_search_spaces",
			Description: "Search all spaces in the organization using administrator access",
			Schema:      NewJSONSchemaFromStruct[SearchSpacesArgs](),
			Resolver:    p.toolSearchSpaces,
		},
		{
			Name:        "chat_find_direct_message",
			Description: "Find the direct message space between the caller and another user",
			Schema:      NewJSONSchemaFromStruct[FindDirectMessageArgs](),
			Resolver:    p.toolFindDirectMessage,
		},
	}
}

func (p *GoogleChatToolProvider) toolListSpaces(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args ListSpacesArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	query := args.query()
	if args.Filter != "" {
		query.Set("filter", args.Filter)
	}

	return fetchPage[chatapi.Space](ctx, tc, "listing spaces", chatapi.Request{
		Method: http.MethodGet,
		Path:   "spaces",
		Query:  query,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolGetSpace(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args GetSpaceArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	return fetchEntity[chatapi.Space](ctx, tc, "getting space", chatapi.Request{
		Method: http.MethodGet,
		Path:   args.SpaceName,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolCreateSpace(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args CreateSpaceArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	spaceType := args.SpaceType
	if spaceType == "" {
		spaceType = "SPACE"
	}
	if spaceType == "SPACE" && args.DisplayName == "" {
		return render.Result{}, invalidArguments("displayName is required when spaceType is SPACE")
	}

	body := map[string]any{"spaceType": spaceType}
	if args.DisplayName != "" {
		body["displayName"] = args.DisplayName
	}
	if details := spaceDetails(args.Description, args.Guidelines); len(details) > 0 {
		body["spaceDetails"] = details
	}
	if args.ExternalUserAllowed != nil {
		body["externalUserAllowed"] = *args.ExternalUserAllowed
	}

	query := url.Values{}
	if args.RequestID != "" {
		query.Set("requestId", args.RequestID)
	}

	return fetchEntity[chatapi.Space](ctx, tc, "creating space", chatapi.Request{
		Method: http.MethodPost,
		Path:   "spaces",
		Query:  query,
		Body:   body,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolUpdateSpace(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args UpdateSpaceArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	mask := chatapi.FieldMask(
		chatapi.MaskField{Path: "displayName", Set: args.DisplayName != nil},
		chatapi.MaskField{Path: "spaceDetails.description", Set: args.Description != nil},
		chatapi.MaskField{Path: "spaceDetails.guidelines", Set: args.Guidelines != nil},
		chatapi.MaskField{Path: "spaceHistoryState", Set: args.SpaceHistoryState != nil},
	)
	if mask == "" {
		return render.Result{}, invalidArguments("at least one of displayName, description, guidelines or spaceHistoryState must be provided")
	}

	body := map[string]any{}
	if args.DisplayName != nil {
		body["displayName"] = *args.DisplayName
	}
	if details := spaceDetails(args.Description, args.Guidelines); len(details) > 0 {
		body["spaceDetails"] = details
	}
	if args.SpaceHistoryState != nil {
		body["spaceHistoryState"] = *args.SpaceHistoryState
	}

	return fetchEntity[chatapi.Space](ctx, tc, "updating space", chatapi.Request{
		Method: http.MethodPatch,
		Path:   args.SpaceName,
		Query:  url.Values{"updateMask": {mask}},
		Body:   body,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolDeleteSpace(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args DeleteSpaceArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	return deleteResource(ctx, tc, chatapi.Request{
		Method: http.MethodDelete,
		Path:   args.SpaceName,
	}, chatapi.KindSpace, "spaceName", args.mode())
}

func (p *GoogleChatToolProvider) toolSearchSpaces(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args SearchSpacesArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	query := args.query()
	query.Set("useAdminAccess", "true")
	query.Set("query", args.Query)
	if args.OrderBy != "" {
		query.Set("orderBy", args.OrderBy)
	}

	return fetchPage[chatapi.Space](ctx, tc, "searching spaces", chatapi.Request{
		Method: http.MethodGet,
		Path:   "spaces:search",
		Query:  query,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolFindDirectMessage(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args FindDirectMessageArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	return fetchEntity[chatapi.Space](ctx, tc, "finding direct message", chatapi.Request{
		Method: http.MethodGet,
		Path:   "spaces:findDirectMessage",
		Query:  url.Values{"name": {args.UserName}},
	}, args.mode())
}

func spaceDetails(description, guidelines *string) map[string]string {
	details := map[string]string{}
	if description != nil {
		details["description"] = *description
	}
	if guidelines != nil {
		details["guidelines"] = *guidelines
	}
	return details
}
