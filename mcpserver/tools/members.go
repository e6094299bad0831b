// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package tools

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
	"github.com/mattermost/googlechat-mcp/mcpserver/render"
)

// ListMembersArgs represents arguments for the chat_list_members tool
type ListMembersArgs struct {
	FormatArgs
	PageArgs
	SpaceName   string `json:"spaceName" jsonschema_description:"Resource name of the space" validate:"required,startswith=spaces/"`
	Filter      string `json:"filter,omitempty" jsonschema_description:"Optional filter, e.g. 'role = \"ROLE_MANAGER\"' or 'member.type = \"HUMAN\"'"`
	ShowGroups  *bool  `json:"showGroups,omitempty" jsonschema_description:"Include Google Group memberships"`
	ShowInvited *bool  `json:"showInvited,omitempty" jsonschema_description:"Include invited members who have not joined yet"`
}

// GetMemberArgs represents arguments for the chat_get_member tool
type GetMemberArgs struct {
	FormatArgs
	MemberName string `json:"memberName" jsonschema_description:"Resource name of the membership, e.g. 'spaces/AAAA/members/123456'" validate:"required,startswith=spaces/"`
}

// CreateMemberArgs represents arguments for the chat_create_member tool
type CreateMemberArgs struct {
	FormatArgs
	SpaceName string `json:"spaceName" jsonschema_description:"Resource name of the space to add the member to" validate:"required,startswith=spaces/"`
	UserName  string `json:"userName,omitempty" jsonschema_description:"Resource name of a user to add, e.g. 'users/123456' or 'users/user@example.com'" validate:"omitempty,startswith=users/"`
	GroupName string `json:"groupName,omitempty" jsonschema_description:"Resource name of a Google Group to add, e.g. 'groups/abc123'. Use instead of userName" validate:"omitempty,startswith=groups/"`
	Role      string `json:"role,omitempty" jsonschema:"enum=ROLE_MEMBER,enum=ROLE_MANAGER" jsonschema_description:"Role in the space (default ROLE_MEMBER)" validate:"omitempty,oneof=ROLE_MEMBER ROLE_MANAGER"`
}

// DeleteMemberArgs represents arguments for the chat_delete_member tool
type DeleteMemberArgs struct {
	FormatArgs
	MemberName string `json:"memberName" jsonschema_description:"Resource name of the membership to remove" validate:"required,startswith=spaces/"`
}

// getMemberTools returns all membership-related tools
func (p *GoogleChatToolProvider) getMemberTools() []MCPTool {
	return []MCPTool{
		{
			Name:        "chat_list_members",
			Description: "List the members of a space",
			Schema:      NewJSONSchemaFromStruct[ListMembersArgs](),
			Resolver:    p.toolListMembers,
		},
		{
			Name:        "chat_get_member",
			Description: "Get a single membership by resource name",
			Schema:      NewJSONSchemaFromStruct[GetMemberArgs](),
			Resolver:    p.toolGetMember,
		},
		{
			Name:        "chat_create_member",
			Description: "Add a user or a Google Group to a space. Provide exactly one of userName or groupName",
			Schema:      NewJSONSchemaFromStruct[CreateMemberArgs](),
			Resolver:    p.toolCreateMember,
		},
		{
			Name:        "chat_delete_member",
			Description: "Remove a member from a space",
			Schema:      NewJSONSchemaFromStruct[DeleteMemberArgs](),
			Resolver:    p.toolDeleteMember,
		},
	}
}

func (p *GoogleChatToolProvider) toolListMembers(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args ListMembersArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	query := args.query()
	if args.Filter != "" {
		query.Set("filter", args.Filter)
	}
	if args.ShowGroups != nil {
		query.Set("showGroups", strconv.FormatBool(*args.ShowGroups))
	}
	if args.ShowInvited != nil {
		query.Set("showInvited", strconv.FormatBool(*args.ShowInvited))
	}

	return fetchPage[chatapi.Membership](ctx, tc, "listing members", chatapi.Request{
		Method: http.MethodGet,
		Path:   args.SpaceName + "/members",
		Query:  query,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolGetMember(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args GetMemberArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	return fetchEntity[chatapi.Membership](ctx, tc, "getting member", chatapi.Request{
		Method: http.MethodGet,
		Path:   args.MemberName,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolCreateMember(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args CreateMemberArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	body := map[string]any{}
	switch {
	case args.UserName != "" && args.GroupName != "":
		return render.Result{}, invalidArguments("provide either userName or groupName, not both")
	case args.UserName != "":
		body["member"] = map[string]string{"name": args.UserName, "type": "HUMAN"}
	case args.GroupName != "":
		body["groupMember"] = map[string]string{"name": args.GroupName}
	default:
		return render.Result{}, invalidArguments("one of userName or groupName is required")
	}
	if args.Role != "" {
		body["role"] = args.Role
	}

	return fetchEntity[chatapi.Membership](ctx, tc, "creating member", chatapi.Request{
		Method: http.MethodPost,
		Path:   args.SpaceName + "/members",
		Body:   body,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolDeleteMember(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args DeleteMemberArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	return deleteResource(ctx, tc, chatapi.Request{
		Method: http.MethodDelete,
		Path:   args.MemberName,
	}, chatapi.KindMember, "memberName", args.mode())
}
