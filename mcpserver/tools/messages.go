// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package tools

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
	"github.com/mattermost/googlechat-mcp/mcpserver/render"
)

// ListMessagesArgs represents arguments for the chat_list_messages tool
type ListMessagesArgs struct {
	FormatArgs
	PageArgs
	SpaceName   string `json:"spaceName" jsonschema_description:"Resource name of the space to read, e.g. 'spaces/AAAAxxxx'" validate:"required,startswith=spaces/"`
	Filter      string `json:"filter,omitempty" jsonschema_description:"Optional filter, e.g. 'createTime > \"2024-01-01T00:00:00Z\"' or 'thread.name = spaces/X/threads/Y'"`
	OrderBy     string `json:"orderBy,omitempty" jsonschema_description:"Sort order: 'createTime asc' (default) or 'createTime desc'"`
	ShowDeleted *bool  `json:"showDeleted,omitempty" jsonschema_description:"Include deleted messages"`
}

// GetMessageArgs represents arguments for the chat_get_message tool
type GetMessageArgs struct {
	FormatArgs
	MessageName string `json:"messageName" jsonschema_description:"Resource name of the message, e.g. 'spaces/AAAA/messages/BBBB'" validate:"required,startswith=spaces/"`
}

// CreateMessageArgs represents arguments for the chat_create_message tool
type CreateMessageArgs struct {
	FormatArgs
	SpaceName          string `json:"spaceName" jsonschema_description:"Resource name of the space to post in" validate:"required,startswith=spaces/"`
	Text               string `json:"text" jsonschema_description:"Message text. Supports Google Chat formatting such as *bold* and _italic_" validate:"required,max=32000"`
	ThreadKey          string `json:"threadKey,omitempty" jsonschema_description:"Optional client-defined key; messages with the same key are posted in the same thread"`
	ThreadName         string `json:"threadName,omitempty" jsonschema_description:"Optional resource name of an existing thread to reply in" validate:"omitempty,startswith=spaces/"`
	MessageReplyOption string `json:"messageReplyOption,omitempty" jsonschema:"enum=REPLY_MESSAGE_FALLBACK_TO_NEW_THREAD,enum=REPLY_MESSAGE_OR_FAIL" jsonschema_description:"How to handle a thread that does not exist. Only sent when provided" validate:"omitempty,oneof=REPLY_MESSAGE_FALLBACK_TO_NEW_THREAD REPLY_MESSAGE_OR_FAIL"`
	MessageID          string `json:"messageId,omitempty" jsonschema_description:"Optional custom ID for the message; must start with 'client-'" validate:"omitempty,startswith=client-,max=63"`
	RequestID          string `json:"requestId,omitempty" jsonschema_description:"Optional idempotency key"`
}

// UpdateMessageArgs represents arguments for the chat_update_message tool
type UpdateMessageArgs struct {
	FormatArgs
	MessageName  string  `json:"messageName" jsonschema_description:"Resource name of the message to update" validate:"required,startswith=spaces/"`
	Text         *string `json:"text,omitempty" jsonschema_description:"New message text" validate:"omitempty,max=32000"`
	AllowMissing *bool   `json:"allowMissing,omitempty" jsonschema_description:"Create the message if it does not exist (requires a client-assigned message ID)"`
}

// DeleteMessageArgs represents arguments for the chat_delete_message tool
type DeleteMessageArgs struct {
	FormatArgs
	MessageName string `json:"messageName" jsonschema_description:"Resource name of the message to delete" validate:"required,startswith=spaces/"`
	Force       *bool  `json:"force,omitempty" jsonschema_description:"Also delete threaded replies"`
}

// getMessageTools returns all message-related tools
func (p *GoogleChatToolProvider) getMessageTools() []MCPTool {
	return []MCPTool{
		{
			Name:        "chat_list_messages",
			Description: "List messages in a space, with optional filtering, ordering and pagination",
			Schema:      NewJSONSchemaFromStruct[ListMessagesArgs](),
			Resolver:    p.toolListMessages,
		},
		{
			Name:        "chat_get_message",
			Description: "Get a single message by resource name",
			Schema:      NewJSONSchemaFromStruct[GetMessageArgs](),
			Resolver:    p.toolGetMessage,
		},
		{
			Name:        "chat_create_message",
			Description: "Post a text message to a space, optionally as a reply in a thread",
			Schema:      NewJSONSchemaFromStruct[CreateMessageArgs](),
			Resolver:    p.toolCreateMessage,
		},
		{
			Name:        "chat_update_message",
			Description: "Edit the text of an existing message",
			Schema:      NewJSONSchemaFromStruct[UpdateMessageArgs](),
			Resolver:    p.toolUpdateMessage,
		},
		{
			Name:        "chat_delete_message",
			Description: "Delete a message",
			Schema:      NewJSONSchemaFromStruct[DeleteMessageArgs](),
			Resolver:    p.toolDeleteMessage,
		},
	}
}

func (p *GoogleChatToolProvider) toolListMessages(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args ListMessagesArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	query := args.query()
	if args.Filter != "" {
		query.Set("filter", args.Filter)
	}
	if args.OrderBy != "" {
		query.Set("orderBy", args.OrderBy)
	}
	if args.ShowDeleted != nil {
		query.Set("showDeleted", strconv.FormatBool(*args.ShowDeleted))
	}

	return fetchPage[chatapi.Message](ctx, tc, "listing messages", chatapi.Request{
		Method: http.MethodGet,
		Path:   args.SpaceName + "/messages",
		Query:  query,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolGetMessage(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args GetMessageArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	return fetchEntity[chatapi.Message](ctx, tc, "getting message", chatapi.Request{
		Method: http.MethodGet,
		Path:   args.MessageName,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolCreateMessage(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args CreateMessageArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	body := map[string]any{"text": args.Text}
	if args.ThreadKey != "" || args.ThreadName != "" {
		thread := map[string]string{}
		if args.ThreadKey != "" {
			thread["threadKey"] = args.ThreadKey
		}
		if args.ThreadName != "" {
			thread["name"] = args.ThreadName
		}
		body["thread"] = thread
	}

	query := url.Values{}
	if args.MessageReplyOption != "" {
		query.Set("messageReplyOption", args.MessageReplyOption)
	}
	if args.MessageID != "" {
		query.Set("messageId", args.MessageID)
	}
	if args.RequestID != "" {
		query.Set("requestId", args.RequestID)
	}

	return fetchEntity[chatapi.Message](ctx, tc, "creating message", chatapi.Request{
		Method: http.MethodPost,
		Path:   args.SpaceName + "/messages",
		Query:  query,
		Body:   body,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolUpdateMessage(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args UpdateMessageArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	mask := chatapi.FieldMask(chatapi.MaskField{Path: "text", Set: args.Text != nil})
	if mask == "" {
		return render.Result{}, invalidArguments("text must be provided")
	}

	query := url.Values{"updateMask": {mask}}
	if args.AllowMissing != nil {
		query.Set("allowMissing", strconv.FormatBool(*args.AllowMissing))
	}

	return fetchEntity[chatapi.Message](ctx, tc, "updating message", chatapi.Request{
		Method: http.MethodPatch,
		Path:   args.MessageName,
		Query:  query,
		Body:   map[string]any{"text": *args.Text},
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolDeleteMessage(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args DeleteMessageArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	query := url.Values{}
	if args.Force != nil {
		query.Set("force", strconv.FormatBool(*args.Force))
	}

	return deleteResource(ctx, tc, chatapi.Request{
		Method: http.MethodDelete,
		Path:   args.MessageName,
		Query:  query,
	}, chatapi.KindMessage, "messageName", args.mode())
}
