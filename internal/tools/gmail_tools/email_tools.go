package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/gmail"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/batch"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

// RegisterEmailTools registers the send/draft/reply tools. All of them
// are write operations, so nothing is registered in read-only mode.
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	sendTool := mcp.NewTool("gmail_send_message",
		mcp.WithDescription("Send an email via Gmail"),
		accountOption(),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient address (string) or array of addresses"),
		),
		mcp.WithString("cc",
			mcp.Description("CC address (string) or array of addresses"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC address (string) or array of addresses"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content"),
		),
		mcp.WithBoolean("isHtml",
			mcp.Description("Treat body as HTML instead of plain text"),
		),
	)
	s.AddTool(sendTool, common.Instrumented("gmail_send_message", "gmail", "send", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendMessage(ctx, request, sc)
		}))

	draftTool := mcp.NewTool("gmail_draft_message",
		mcp.WithDescription("Create a Gmail draft without sending it"),
		accountOption(),
		mcp.WithString("to",
			mcp.Description("Recipient address (string) or array of addresses"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content"),
		),
		mcp.WithString("threadId",
			mcp.Description("Thread to attach the draft to"),
		),
		mcp.WithBoolean("isHtml",
			mcp.Description("Treat body as HTML instead of plain text"),
		),
	)
	s.AddTool(draftTool, common.Instrumented("gmail_draft_message", "gmail", "draft", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDraftMessage(ctx, request, sc)
		}))

	replyTool := mcp.NewTool("gmail_reply_to_message",
		mcp.WithDescription("Reply to a Gmail message, preserving the thread"),
		accountOption(),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to reply to"),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread the message belongs to"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Reply body content"),
		),
		mcp.WithString("cc",
			mcp.Description("CC address (string) or array of addresses"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC address (string) or array of addresses"),
		),
		mcp.WithBoolean("isHtml",
			mcp.Description("Treat body as HTML instead of plain text"),
		),
	)
	s.AddTool(replyTool, common.Instrumented("gmail_reply_to_message", "gmail", "send", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReplyToMessage(ctx, request, sc)
		}))

	return nil
}

// addressList parses an optional string-or-array address argument.
func addressList(args map[string]interface{}, name string) ([]string, error) {
	if args[name] == nil {
		return nil, nil
	}
	return batch.ParseStringOrArray(args[name], name)
}

func handleSendMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	to, err := batch.ParseStringOrArray(args["to"], "to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cc, err := addressList(args, "cc")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bcc, err := addressList(args, "bcc")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := &gmail.EmailMessage{
		To:      to,
		Cc:      cc,
		Bcc:     bcc,
		Subject: request.GetString("subject", ""),
		Body:    request.GetString("body", ""),
		IsHTML:  request.GetBool("isHtml", false),
	}

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	messageID, err := client.SendEmail(msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Email sent. Message ID: %s", messageID)), nil
}

func handleDraftMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	to, err := addressList(args, "to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := &gmail.EmailMessage{
		To:      to,
		Subject: request.GetString("subject", ""),
		Body:    request.GetString("body", ""),
		IsHTML:  request.GetBool("isHtml", false),
	}

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	draftID, err := client.CreateDraft(msg, request.GetString("threadId", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create draft: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Draft created. Draft ID: %s", draftID)), nil
}

func handleReplyToMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID := request.GetString("messageId", "")
	threadID := request.GetString("threadId", "")
	body := request.GetString("body", "")
	if messageID == "" || threadID == "" || body == "" {
		return mcp.NewToolResultError("messageId, threadId and body are required"), nil
	}

	cc, err := addressList(args, "cc")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bcc, err := addressList(args, "bcc")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	replyID, err := client.ReplyToEmail(messageID, threadID, body, cc, bcc, request.GetBool("isHtml", false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send reply: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reply sent. Message ID: %s", replyID)), nil
}
