package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/gmail"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

// RegisterAttachmentTools registers attachment listing and download
// tools. Both are read-only.
func RegisterAttachmentTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("gmail_list_attachments",
		mcp.WithDescription("List attachments of a Gmail message"),
		accountOption(),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message"),
		),
	)
	s.AddTool(listTool, common.Instrumented("gmail_list_attachments", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAttachments(ctx, request, sc)
		}))

	getTool := mcp.NewTool("gmail_get_attachment",
		mcp.WithDescription("Download a Gmail attachment and expose it for retrieval. Returns a URL valid for a limited time."),
		accountOption(),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message"),
		),
		mcp.WithString("attachmentId",
			mcp.Required(),
			mcp.Description("The ID of the attachment (from gmail_list_attachments)"),
		),
		mcp.WithString("filename",
			mcp.Description("Filename to store the attachment under (defaults to the original name)"),
		),
	)
	s.AddTool(getTool, common.Instrumented("gmail_get_attachment", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAttachment(ctx, request, sc)
		}))

	return nil
}

func handleListAttachments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID := request.GetString("messageId", "")
	if messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	infos, err := client.ListAttachments(messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list attachments: %v", err)), nil
	}
	if len(infos) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Message %s has no attachments", messageID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d attachments on message %s:\n", len(infos), messageID)
	for i, info := range infos {
		fmt.Fprintf(&b, "%d. %s (%s, %d bytes)\n   Attachment ID: %s\n",
			i+1, info.Filename, info.MimeType, info.Size, info.AttachmentID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetAttachment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID := request.GetString("messageId", "")
	attachmentID := request.GetString("attachmentId", "")
	if messageID == "" || attachmentID == "" {
		return mcp.NewToolResultError("messageId and attachmentId are required"), nil
	}

	store := sc.Attachments()
	if store == nil {
		return mcp.NewToolResultError("attachment storage is not configured"), nil
	}

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	filename := request.GetString("filename", "")
	mimeType := "application/octet-stream"
	if filename == "" {
		// Look the original name and type up in the message metadata.
		infos, err := client.ListAttachments(messageID)
		if err == nil {
			for _, info := range infos {
				if info.AttachmentID == attachmentID {
					filename = info.Filename
					if info.MimeType != "" {
						mimeType = info.MimeType
					}
					break
				}
			}
		}
	}
	if filename == "" {
		filename = "attachment"
	}

	data, err := client.GetAttachment(messageID, attachmentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to download attachment: %v", err)), nil
	}

	record, err := store.Put(gmail.SanitizeFilename(filename), mimeType, data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to store attachment: %v", err)), nil
	}

	result := fmt.Sprintf("Attachment %q stored (%d bytes, %s).\nDownload URL: %s\nLocal path: %s\nExpires: %s",
		record.Filename, record.Size, record.MimeType, common.AttachmentDownloadURL(sc, record.ID), record.Path,
		record.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	return mcp.NewToolResultText(result), nil
}
