package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/gmail"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/batch"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

// accountOption is the shared account parameter every Gmail tool takes.
func accountOption() mcp.ToolOption {
	return mcp.WithString("user_google_email",
		mcp.Description("The Google account to act on. Optional when the request is already authenticated."),
	)
}

// gmailClient resolves the account for the request and returns a Gmail
// client for it.
func gmailClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*gmail.Client, string, error) {
	account := common.AccountFromRequest(ctx, request)
	client, err := sc.GmailClientForAccount(account)
	if err != nil {
		return nil, account, err
	}
	return client, account, nil
}

// RegisterGmailTools registers all Gmail tools with the MCP server.
// Write operations are skipped when readOnly is set.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEmailTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}
	if err := RegisterLabelTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register label tools: %w", err)
	}
	if err := RegisterFilterTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register filter tools: %w", err)
	}
	if err := RegisterAttachmentTools(s, sc); err != nil {
		return fmt.Errorf("failed to register attachment tools: %w", err)
	}

	searchTool := mcp.NewTool("gmail_search_messages",
		mcp.WithDescription("Search Gmail messages using standard Gmail search operators"),
		accountOption(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'from:user@example.com is:unread')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	s.AddTool(searchTool, common.Instrumented("gmail_search_messages", "gmail", "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchMessages(ctx, request, sc)
		}))

	getMessageTool := mcp.NewTool("gmail_get_message_content",
		mcp.WithDescription("Get the headers and body of a Gmail message"),
		accountOption(),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message"),
		),
		mcp.WithString("format",
			mcp.Description("Body format: 'text' (default) or 'html'"),
		),
	)
	s.AddTool(getMessageTool, common.Instrumented("gmail_get_message_content", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessageContent(ctx, request, sc)
		}))

	batchMessagesTool := mcp.NewTool("gmail_get_messages_content_batch",
		mcp.WithDescription("Get the content of one or more Gmail messages in a single call"),
		accountOption(),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs"),
		),
		mcp.WithString("format",
			mcp.Description("Body format: 'text' (default) or 'html'"),
		),
	)
	s.AddTool(batchMessagesTool, common.Instrumented("gmail_get_messages_content_batch", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessagesBatch(ctx, request, sc)
		}))

	getThreadTool := mcp.NewTool("gmail_get_thread_content",
		mcp.WithDescription("Get all messages of a Gmail thread"),
		accountOption(),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread"),
		),
	)
	s.AddTool(getThreadTool, common.Instrumented("gmail_get_thread_content", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetThreadContent(ctx, request, sc)
		}))

	batchThreadsTool := mcp.NewTool("gmail_get_threads_content_batch",
		mcp.WithDescription("Get the content of one or more Gmail threads in a single call"),
		accountOption(),
		mcp.WithString("threadIds",
			mcp.Required(),
			mcp.Description("Thread ID (string) or array of thread IDs"),
		),
	)
	s.AddTool(batchThreadsTool, common.Instrumented("gmail_get_threads_content_batch", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetThreadsBatch(ctx, request, sc)
		}))

	if !readOnly {
		modifyLabelsTool := mcp.NewTool("gmail_modify_message_labels",
			mcp.WithDescription("Add and/or remove labels on one or more Gmail messages"),
			accountOption(),
			mcp.WithString("messageIds",
				mcp.Required(),
				mcp.Description("Message ID (string) or array of message IDs"),
			),
			mcp.WithString("addLabelIds",
				mcp.Description("Label ID (string) or array of label IDs to add"),
			),
			mcp.WithString("removeLabelIds",
				mcp.Description("Label ID (string) or array of label IDs to remove"),
			),
		)
		s.AddTool(modifyLabelsTool, common.Instrumented("gmail_modify_message_labels", "gmail", "modify", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleModifyMessageLabels(ctx, request, sc)
			}))
	}

	return nil
}

func handleSearchMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	maxResults := int64(request.GetInt("maxResults", 10))

	client, account, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	messages, err := client.SearchMessages(query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search messages: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d messages for query %q:\n", len(messages), query)
	for i, m := range messages {
		fmt.Fprintf(&b, "%d. Message ID: %s (Thread: %s)\n   %s\n   %s\n",
			i+1, m.Id, m.ThreadId, m.Snippet, gmail.WebURL(m.Id, account))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// formatMessage renders one message with its common headers and body.
func formatMessage(client *gmail.Client, messageID, format string) (string, error) {
	msg, err := client.GetMessage(messageID)
	if err != nil {
		return "", err
	}

	body, err := gmail.ExtractBody(msg, format)
	if err != nil {
		body = fmt.Sprintf("(no %s body: %v)", format, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Message ID: %s\n", msg.Id)
	fmt.Fprintf(&b, "Thread ID: %s\n", msg.ThreadId)
	for _, h := range []string{"From", "To", "Cc", "Date", "Subject"} {
		if v := gmail.HeaderValue(msg, h); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", h, v)
		}
	}
	fmt.Fprintf(&b, "\n%s", body)
	return b.String(), nil
}

func handleGetMessageContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID := request.GetString("messageId", "")
	if messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}
	format := request.GetString("format", "text")

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	content, err := formatMessage(client, messageID, format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get message: %v", err)), nil
	}
	return mcp.NewToolResultText(content), nil
}

func handleGetMessagesBatch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := request.GetString("format", "text")

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	results := batch.Process(ctx, messageIDs, func(id string) (string, error) {
		return formatMessage(client, id, format)
	})
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

// formatThread renders every message of a thread.
func formatThread(client *gmail.Client, threadID string) (string, error) {
	thread, err := client.GetThread(threadID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thread ID: %s (%d messages)\n", thread.Id, len(thread.Messages))
	for i, msg := range thread.Messages {
		body, err := gmail.ExtractBody(msg, "text")
		if err != nil {
			body = "(no text body)"
		}
		fmt.Fprintf(&b, "\n--- Message %d ---\n", i+1)
		for _, h := range []string{"From", "Date", "Subject"} {
			if v := gmail.HeaderValue(msg, h); v != "" {
				fmt.Fprintf(&b, "%s: %s\n", h, v)
			}
		}
		fmt.Fprintf(&b, "\n%s\n", body)
	}
	return b.String(), nil
}

func handleGetThreadContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	threadID := request.GetString("threadId", "")
	if threadID == "" {
		return mcp.NewToolResultError("threadId is required"), nil
	}

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	content, err := formatThread(client, threadID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get thread: %v", err)), nil
	}
	return mcp.NewToolResultText(content), nil
}

func handleGetThreadsBatch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	threadIDs, err := batch.ParseStringOrArray(args["threadIds"], "threadIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	results := batch.Process(ctx, threadIDs, func(id string) (string, error) {
		return formatThread(client, id)
	})
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleModifyMessageLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var addLabelIDs, removeLabelIDs []string
	if args["addLabelIds"] != nil {
		addLabelIDs, err = batch.ParseStringOrArray(args["addLabelIds"], "addLabelIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if args["removeLabelIds"] != nil {
		removeLabelIDs, err = batch.ParseStringOrArray(args["removeLabelIds"], "removeLabelIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if len(addLabelIDs) == 0 && len(removeLabelIDs) == 0 {
		return mcp.NewToolResultError("at least one of addLabelIds or removeLabelIds is required"), nil
	}

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	results := batch.Process(ctx, messageIDs, func(id string) (string, error) {
		if _, err := client.ModifyMessageLabels(id, addLabelIDs, removeLabelIDs); err != nil {
			return "", err
		}
		return "labels updated", nil
	})
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
