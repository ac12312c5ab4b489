package chat_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	chat_v1 "google.golang.org/api/chat/v1"

	"github.com/workspace-mcp/workspace-mcp/internal/chat"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

func accountOption() mcp.ToolOption {
	return mcp.WithString("user_google_email",
		mcp.Description("The Google account to act on. Optional when the request is already authenticated."),
	)
}

func chatClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*chat.Client, error) {
	account := common.AccountFromRequest(ctx, request)
	return sc.ChatClientForAccount(account)
}

// RegisterChatTools registers all Google Chat tools with the MCP
// server. Write operations are skipped when readOnly is set.
func RegisterChatTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listSpacesTool := mcp.NewTool("chat_list_spaces",
		mcp.WithDescription("List Google Chat spaces the account is a member of"),
		accountOption(),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of spaces (default: 100)"),
		),
	)
	s.AddTool(listSpacesTool, common.Instrumented("chat_list_spaces", "chat", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSpaces(ctx, request, sc)
		}))

	getMessagesTool := mcp.NewTool("chat_get_messages",
		mcp.WithDescription("Get recent messages of a Chat space, newest first"),
		accountOption(),
		mcp.WithString("spaceId",
			mcp.Required(),
			mcp.Description("Space ID or resource name (e.g. 'spaces/AAAA')"),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of messages (default: 25)"),
		),
	)
	s.AddTool(getMessagesTool, common.Instrumented("chat_get_messages", "chat", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessages(ctx, request, sc)
		}))

	searchTool := mcp.NewTool("chat_search_messages",
		mcp.WithDescription("Search recent Chat messages for a substring, optionally within a single space"),
		accountOption(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for"),
		),
		mcp.WithString("spaceId",
			mcp.Description("Restrict the search to this space"),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Messages scanned per space (default: 50)"),
		),
	)
	s.AddTool(searchTool, common.Instrumented("chat_search_messages", "chat", "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchMessages(ctx, request, sc)
		}))

	if !readOnly {
		sendTool := mcp.NewTool("chat_send_message",
			mcp.WithDescription("Send a message to a Chat space, optionally threading it"),
			accountOption(),
			mcp.WithString("spaceId",
				mcp.Required(),
				mcp.Description("Space ID or resource name"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Message text"),
			),
			mcp.WithString("threadKey",
				mcp.Description("Thread key to reply into (falls back to a new thread if unavailable)"),
			),
		)
		s.AddTool(sendTool, common.Instrumented("chat_send_message", "chat", "send", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleSendMessage(ctx, request, sc)
			}))

		reactionTool := mcp.NewTool("chat_create_reaction",
			mcp.WithDescription("Add an emoji reaction to a Chat message"),
			accountOption(),
			mcp.WithString("messageName",
				mcp.Required(),
				mcp.Description("Full message resource name (e.g. 'spaces/AAAA/messages/BBBB')"),
			),
			mcp.WithString("emoji",
				mcp.Required(),
				mcp.Description("Unicode emoji, e.g. '👍'"),
			),
		)
		s.AddTool(reactionTool, common.Instrumented("chat_create_reaction", "chat", "send", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateReaction(ctx, request, sc)
			}))
	}

	return nil
}

func handleListSpaces(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	pageSize := int64(request.GetInt("pageSize", 100))

	client, err := chatClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	spaces, err := client.ListSpaces(pageSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list spaces: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d spaces:\n", len(spaces))
	for i, space := range spaces {
		name := space.DisplayName
		if name == "" {
			name = "(direct message)"
		}
		fmt.Fprintf(&b, "%d. %s (%s, type: %s)\n", i+1, name, space.Name, space.SpaceType)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// formatChatMessages renders messages with resolved sender names.
func formatChatMessages(client *chat.Client, messages []*chat_v1.Message) string {
	var b strings.Builder
	for i, m := range messages {
		sender := client.ResolveSender(m.Sender)
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n   (%s)\n", i+1, m.CreateTime, sender, m.Text, m.Name)
	}
	return b.String()
}

func handleGetMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spaceID := request.GetString("spaceId", "")
	if spaceID == "" {
		return mcp.NewToolResultError("spaceId is required"), nil
	}
	pageSize := int64(request.GetInt("pageSize", 25))

	client, err := chatClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	space, err := client.GetSpace(spaceID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get space: %v", err)), nil
	}

	messages, err := client.GetMessages(spaceID, pageSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get messages: %v", err)), nil
	}

	header := fmt.Sprintf("Space: %s (%s)\n%d messages:\n", space.DisplayName, space.Name, len(messages))
	return mcp.NewToolResultText(header + formatChatMessages(client, messages)), nil
}

func handleSearchMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	spaceID := request.GetString("spaceId", "")
	pageSize := int64(request.GetInt("pageSize", 50))

	client, err := chatClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	messages, err := client.SearchMessages(query, spaceID, pageSize, 20)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search messages: %v", err)), nil
	}

	header := fmt.Sprintf("Found %d messages matching %q:\n", len(messages), query)
	return mcp.NewToolResultText(header + formatChatMessages(client, messages)), nil
}

func handleSendMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spaceID := request.GetString("spaceId", "")
	text := request.GetString("text", "")
	if spaceID == "" || text == "" {
		return mcp.NewToolResultError("spaceId and text are required"), nil
	}

	client, err := chatClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	message, err := client.SendMessage(spaceID, text, request.GetString("threadKey", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send message: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Message sent: %s", message.Name)), nil
}

func handleCreateReaction(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageName := request.GetString("messageName", "")
	emoji := request.GetString("emoji", "")
	if messageName == "" || emoji == "" {
		return mcp.NewToolResultError("messageName and emoji are required"), nil
	}

	client, err := chatClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	if _, err := client.CreateReaction(messageName, emoji); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create reaction: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reacted with %s to %s", emoji, messageName)), nil
}
