// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mattermost/googlechat-mcp/mcpserver/chatapi"
	"github.com/mattermost/googlechat-mcp/mcpserver/render"
)

// GetAttachmentArgs represents arguments for the chat_get_attachment tool
type GetAttachmentArgs struct {
	FormatArgs
	AttachmentName string `json:"attachmentName" jsonschema_description:"Resource name of the attachment, e.g. 'spaces/AAAA/messages/BBBB/attachments/CCCC'" validate:"required,startswith=spaces/"`
}

// UploadAttachmentArgs represents arguments for the chat_upload_attachment tool
type UploadAttachmentArgs struct {
	FormatArgs
	SpaceName string `json:"spaceName" jsonschema_description:"Resource name of the space the attachment is for" validate:"required,startswith=spaces/"`
	Filename  string `json:"filename" jsonschema_description:"Name of the file to register" validate:"required,max=255"`
}

// getAttachmentTools returns all attachment-related tools
func (p *GoogleChatToolProvider) getAttachmentTools() []MCPTool {
	return []MCPTool{
		{
			Name:        "chat_get_attachment",
			Description: "Get the metadata of a message attachment, including its download link",
			Schema:      NewJSONSchemaFromStruct[GetAttachmentArgs](),
			Resolver:    p.toolGetAttachment,
		},
		{
			Name:        "chat_upload_attachment",
			Description: "Register an attachment upload for a space. Only the file name is sent; file content transfer is not supported",
			Schema:      NewJSONSchemaFromStruct[UploadAttachmentArgs](),
			Resolver:    p.toolUploadAttachment,
		},
	}
}

func (p *GoogleChatToolProvider) toolGetAttachment(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args GetAttachmentArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	return fetchEntity[chatapi.Attachment](ctx, tc, "getting attachment", chatapi.Request{
		Method: http.MethodGet,
		Path:   args.AttachmentName,
	}, args.mode())
}

// toolUploadAttachment sends upload metadata only. The response carries an
// attachment data reference rather than an Attachment resource.
func (p *GoogleChatToolProvider) toolUploadAttachment(ctx context.Context, tc *ToolContext, argsGetter ArgumentGetter) (render.Result, error) {
	var args UploadAttachmentArgs
	if err := argsGetter(&args); err != nil {
		return render.Result{}, err
	}

	raw, err := tc.Client.Do(ctx, chatapi.Request{
		Method: http.MethodPost,
		Path:   args.SpaceName + "/attachments:upload",
		Body:   map[string]string{"filename": args.Filename},
	})
	if err != nil {
		return render.Result{}, fmt.Errorf("error uploading attachment: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Attachment Upload\n\n")
	fmt.Fprintf(&b, "**File:** %s\n", args.Filename)
	fmt.Fprintf(&b, "**Space:** %s\n", args.SpaceName)
	if ref := gjson.GetBytes(raw, "attachmentDataRef.resourceName").String(); ref != "" {
		fmt.Fprintf(&b, "**Media Resource:** %s\n", ref)
	}
	if token := gjson.GetBytes(raw, "attachmentDataRef.attachmentUploadToken").String(); token != "" {
		fmt.Fprintf(&b, "**Upload Token:** %s\n", token)
	}
	b.WriteString("\nNote: only metadata was sent. Attach the reference to a message to share it.")

	return tc.Renderer.Value(b.String(), raw, args.mode())
}
