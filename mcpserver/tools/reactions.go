// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package tools

import (
	"context"
	"net/http"

	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
	"github.com/mattermost/googlechat-mcp/mcpserver/render"
)

// ListReactionsArgs represents arguments for the chat_list_reactions tool
type ListReactionsArgs struct {
	FormatArgs
	PageArgs
	MessageName string `json:"messageName" jsonschema_description:"Resource name of the message" validate:"required,startswith=spaces/"`
	Filter      string `json:"filter,omitempty" jsonschema_description:"Optional filter, e.g. 'emoji.unicode = \"🙂\"' or 'user.name = \"users/123\"'"`
}

// CreateReactionArgs represents arguments for the chat_create_reaction tool
type CreateReactionArgs struct {
	FormatArgs
	MessageName    string `json:"messageName" jsonschema_description:"Resource name of the message to react to" validate:"required,startswith=spaces/"`
	Unicode        string `json:"unicode,omitempty" jsonschema_description:"A unicode emoji, e.g. '👍'"`
	CustomEmojiUID string `json:"customEmojiUid,omitempty" jsonschema_description:"UID of a custom emoji. Use instead of unicode"`
}

// DeleteReactionArgs represents arguments for the chat_delete_reaction tool
type DeleteReactionArgs struct {
	FormatArgs
	ReactionName string `json:"reactionName" jsonschema_description:"Resource name of the reaction, e.g. 'spaces/AAAA/messages/BBBB/reactions/CCCC'" validate:"required,startswith=spaces/"`
}

// getReactionTools returns all reaction-related tools
func (p *GoogleChatToolProvider) getReactionTools() []MCPTool {
	return []MCPTool{
		{
			Name:        "chat_list_reactions",
			Description: "List the emoji reactions on a message, grouped by emoji",
			Schema:      NewJSONSchemaFromStruct[ListReactionsArgs](),
			Resolver:    p.toolListReactions,
		},
		{
			Name:        "chat_create_reaction",
			Description: "Add an emoji reaction to a message. Provide exactly one of unicode or customEmojiUid",
			Schema:      NewJSONSchemaFromStruct[CreateReactionArgs](),
			Resolver:    p.toolCreateReaction,
		},
		{
			Name:        "chat_delete_reaction",
			Description: "Remove a reaction from a message",
			Schema:      NewJSONSchemaFromStruct[DeleteReactionArgs](),
			Resolver:    p.toolDeleteReaction,
		},
	}
}

func (p *GoogleChatToolProvider) toolListReactions(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args ListReactionsArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	query := args.query()
	if args.Filter != "" {
		query.Set("filter", args.Filter)
	}

	return fetchPage[chatapi.Reaction](ctx, tc, "listing reactions", chatapi.Request{
		Method: http.MethodGet,
		Path:   args.MessageName + "/reactions",
		Query:  query,
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolCreateReaction(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args CreateReactionArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	var emoji map[string]any
	switch {
	case args.Unicode != "" && args.CustomEmojiUID != "":
		return render.Result{}, invalidArguments("provide either unicode or customEmojiUid, not both")
	case args.Unicode != "":
		emoji = map[string]any{"unicode": args.Unicode}
	case args.CustomEmojiUID != "":
		emoji = map[string]any{"customEmoji": map[string]string{"uid": args.CustomEmojiUID}}
	default:
		return render.Result{}, invalidArguments("one of unicode or customEmojiUid is required")
	}

	return fetchEntity[chatapi.Reaction](ctx, tc, "creating reaction", chatapi.Request{
		Method: http.MethodPost,
		Path:   args.MessageName + "/reactions",
		Body:   map[string]any{"emoji": emoji},
	}, args.mode())
}

func (p *GoogleChatToolProvider) toolDeleteReaction(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args DeleteReactionArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	return deleteResource(ctx, tc, chatapi.Request{
		Method: http.MethodDelete,
		Path:   args.ReactionName,
	}, chatapi.KindReaction, "reactionName", args.mode())
}
