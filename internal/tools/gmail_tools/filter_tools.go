package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	gmail_v1 "google.golang.org/api/gmail/v1"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/batch"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

// RegisterFilterTools registers Gmail filter tools.
func RegisterFilterTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listFiltersTool := mcp.NewTool("gmail_list_filters",
		mcp.WithDescription("List all Gmail filters with their criteria and actions"),
		accountOption(),
	)
	s.AddTool(listFiltersTool, common.Instrumented("gmail_list_filters", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFilters(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createFilterTool := mcp.NewTool("gmail_create_filter",
		mcp.WithDescription("Create a Gmail filter. At least one criteria and one action is required."),
		accountOption(),
		mcp.WithString("from",
			mcp.Description("Criteria: sender address"),
		),
		mcp.WithString("to",
			mcp.Description("Criteria: recipient address"),
		),
		mcp.WithString("subject",
			mcp.Description("Criteria: subject contains"),
		),
		mcp.WithString("query",
			mcp.Description("Criteria: Gmail search query"),
		),
		mcp.WithBoolean("hasAttachment",
			mcp.Description("Criteria: message has an attachment"),
		),
		mcp.WithString("addLabelIds",
			mcp.Description("Action: label ID (string) or array of label IDs to apply"),
		),
		mcp.WithString("removeLabelIds",
			mcp.Description("Action: label ID (string) or array of label IDs to remove (e.g. INBOX to archive)"),
		),
		mcp.WithString("forward",
			mcp.Description("Action: forward to this address"),
		),
	)
	s.AddTool(createFilterTool, common.Instrumented("gmail_create_filter", "gmail", "modify", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateFilter(ctx, request, sc)
		}))

	deleteFilterTool := mcp.NewTool("gmail_delete_filter",
		mcp.WithDescription("Delete a Gmail filter by ID"),
		accountOption(),
		mcp.WithString("filterId",
			mcp.Required(),
			mcp.Description("The ID of the filter to delete"),
		),
	)
	s.AddTool(deleteFilterTool, common.Instrumented("gmail_delete_filter", "gmail", "modify", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteFilter(ctx, request, sc)
		}))

	return nil
}

// formatFilter renders a filter's criteria and actions on one block.
func formatFilter(f *gmail_v1.Filter) string {
	var parts []string
	if c := f.Criteria; c != nil {
		if c.From != "" {
			parts = append(parts, "from:"+c.From)
		}
		if c.To != "" {
			parts = append(parts, "to:"+c.To)
		}
		if c.Subject != "" {
			parts = append(parts, "subject:"+c.Subject)
		}
		if c.Query != "" {
			parts = append(parts, "query:"+c.Query)
		}
		if c.HasAttachment {
			parts = append(parts, "has:attachment")
		}
	}
	var actions []string
	if a := f.Action; a != nil {
		if len(a.AddLabelIds) > 0 {
			actions = append(actions, "add "+strings.Join(a.AddLabelIds, ","))
		}
		if len(a.RemoveLabelIds) > 0 {
			actions = append(actions, "remove "+strings.Join(a.RemoveLabelIds, ","))
		}
		if a.Forward != "" {
			actions = append(actions, "forward "+a.Forward)
		}
	}
	return fmt.Sprintf("- %s: [%s] -> [%s]", f.Id, strings.Join(parts, " "), strings.Join(actions, "; "))
}

func handleListFilters(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	filters, err := client.ListFilters()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list filters: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d filters:\n", len(filters))
	for _, f := range filters {
		fmt.Fprintln(&b, formatFilter(f))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateFilter(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	criteria := &gmail_v1.FilterCriteria{
		From:          request.GetString("from", ""),
		To:            request.GetString("to", ""),
		Subject:       request.GetString("subject", ""),
		Query:         request.GetString("query", ""),
		HasAttachment: request.GetBool("hasAttachment", false),
	}
	if criteria.From == "" && criteria.To == "" && criteria.Subject == "" &&
		criteria.Query == "" && !criteria.HasAttachment {
		return mcp.NewToolResultError("at least one filter criteria is required"), nil
	}

	action := &gmail_v1.FilterAction{
		Forward: request.GetString("forward", ""),
	}
	var err error
	if args["addLabelIds"] != nil {
		action.AddLabelIds, err = batch.ParseStringOrArray(args["addLabelIds"], "addLabelIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if args["removeLabelIds"] != nil {
		action.RemoveLabelIds, err = batch.ParseStringOrArray(args["removeLabelIds"], "removeLabelIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if len(action.AddLabelIds) == 0 && len(action.RemoveLabelIds) == 0 && action.Forward == "" {
		return mcp.NewToolResultError("at least one filter action is required"), nil
	}

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	filter, err := client.CreateFilter(criteria, action)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create filter: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Filter created with ID: %s", filter.Id)), nil
}

func handleDeleteFilter(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	filterID := request.GetString("filterId", "")
	if filterID == "" {
		return mcp.NewToolResultError("filterId is required"), nil
	}

	client, _, err := gmailClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	if err := client.DeleteFilter(filterID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete filter: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Filter %s deleted", filterID)), nil
}
