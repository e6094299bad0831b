// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package tools

import (
	"context"
	"fmt"

	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
	"github.com/mattermost/googlechat-mcp/mcpserver/render"
)

// fetchEntity performs req and renders the single resource it returns.
func fetchEntity[T chatapi.Entity](ctx context.Context, tc *ToolContext, action string, req chatapi.Request, mode render.Mode) (render.Result, error) {
	raw, err := tc.Client.Do(ctx, req)
	if err != nil {
		return render.Result{}, fmt.Errorf("error %s: %w", action, err)
	}
	entity, err := chatapi.DecodeEntity[T](raw)
	if err != nil {
		return render.Result{}, err
	}
	return tc.Renderer.Entity(entity, mode)
}

// fetchPage performs req and renders the page of resources it returns.
func fetchPage[T chatapi.Entity](ctx context.Context, tc *ToolContext, action string, req chatapi.Request, mode render.Mode) (render.Result, error) {
	raw, err := tc.Client.Do(ctx, req)
	if err != nil {
		return render.Result{}, fmt.Errorf("error %s: %w", action, err)
	}
	page, err := chatapi.DecodePage[T](raw)
	if err != nil {
		return render.Result{}, err
	}
	return tc.Renderer.Collection(page, mode)
}

// deleteResource performs a DELETE and echoes the input name without
// rendering the upstream response.
func deleteResource(ctx context.Context, tc *ToolContext, req chatapi.Request, kind chatapi.Kind, key string, mode render.Mode) (render.Result, error) {
	if _, err := tc.Client.Do(ctx, req); err != nil {
		return render.Result{}, fmt.Errorf("error deleting %s: %w", kind, err)
	}
	text := fmt.Sprintf("Successfully deleted %s `%s`.", kind, req.Path)
	return tc.Renderer.Value(text, deletedEcho(key, req.Path), mode)
}
