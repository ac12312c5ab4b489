package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

// RegisterLabelTools registers label listing and management tools.
func RegisterLabelTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listLabelsTool := mcp.NewTool("gmail_list_labels",
		mcp.WithDescription("List all Gmail labels (system and user-created)"),
		accountOption(),
	)
	s.AddTool(listLabelsTool, common.Instrumented("gmail_list_labels", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	if !readOnly {
		manageLabelTool := mcp.NewTool("gmail_manage_label",
			mcp.WithDescription("Create, update or delete a Gmail label"),
			accountOption(),
			mcp.WithString("action",
				mcp.Required(),
				mcp.Description("One of 'create', 'update' or 'delete'"),
			),
			mcp.WithString("name",
				mcp.Description("Label name (required for create, optional for update)"),
			),
			mcp.WithString("labelId",
				mcp.Description("Label ID (required for update and delete)"),
			),
			mcp.WithString("labelListVisibility",
				mcp.Description("'labelShow', 'labelShowIfUnread' or 'labelHide'"),
			),
			mcp.WithString("messageListVisibility",
				mcp.Description("'show' or 'hide'"),
			),
		)
		s.AddTool(manageLabelTool, common.Instrumented("gmail_manage_label", "gmail", "modify", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleManageLabel(ctx, request, sc)
			}))
	}

	return nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	labels, err := client.ListLabels()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	var system, user []string
	for _, l := range labels {
		line := fmt.Sprintf("- %s (ID: %s)", l.Name, l.Id)
		if l.Type == "system" {
			system = append(system, line)
		} else {
			user = append(user, line)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d labels.\n", len(labels))
	if len(system) > 0 {
		fmt.Fprintf(&b, "\nSystem labels:\n%s\n", strings.Join(system, "\n"))
	}
	if len(user) > 0 {
		fmt.Fprintf(&b, "\nUser labels:\n%s\n", strings.Join(user, "\n"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleManageLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	action := request.GetString("action", "")
	name := request.GetString("name", "")
	labelID := request.GetString("labelId", "")
	labelListVisibility := request.GetString("labelListVisibility", "")
	messageListVisibility := request.GetString("messageListVisibility", "")

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	switch action {
	case "create":
		if name == "" {
			return mcp.NewToolResultError("name is required for create"), nil
		}
		label, err := client.CreateLabel(name, labelListVisibility, messageListVisibility)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create label: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Label %q created with ID: %s", label.Name, label.Id)), nil

	case "update":
		if labelID == "" {
			return mcp.NewToolResultError("labelId is required for update"), nil
		}
		label, err := client.UpdateLabel(labelID, name, labelListVisibility, messageListVisibility)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update label: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Label %s updated (name: %q)", label.Id, label.Name)), nil

	case "delete":
		if labelID == "" {
			return mcp.NewToolResultError("labelId is required for delete"), nil
		}
		if err := client.DeleteLabel(labelID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete label: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Label %s deleted", labelID)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("Invalid action %q, must be 'create', 'update' or 'delete'", action)), nil
	}
}
