package docs_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/docs"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

func accountOption() mcp.ToolOption {
	return mcp.WithString("user_google_email",
		mcp.Description("The Google account to act on. Optional when the request is already authenticated."),
	)
}

func docsClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*docs.Client, error) {
	account := common.AccountFromRequest(ctx, request)
	return sc.DocsClientForAccount(account)
}

// RegisterDocsTools registers all Google Docs tools with the MCP
// server. Write operations are skipped when readOnly is set.
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getContentTool := mcp.NewTool("docs_get_content",
		mcp.WithDescription("Get the content of a Google Doc"),
		accountOption(),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The ID of the document"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'text' (default) or 'json'"),
		),
	)
	s.AddTool(getContentTool, common.Instrumented("docs_get_content", "docs", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetContent(ctx, request, sc)
		}))

	if !readOnly {
		createTool := mcp.NewTool("docs_create_document",
			mcp.WithDescription("Create a new Google Doc"),
			accountOption(),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Title of the new document"),
			),
		)
		s.AddTool(createTool, common.Instrumented("docs_create_document", "docs", "create", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateDocument(ctx, request, sc)
			}))

		batchUpdateTool := mcp.NewTool("docs_batch_update",
			mcp.WithDescription("Apply a sequence of edits to a Google Doc in one call. Operations: insert_text, delete_range, replace_range, format_text, insert_table, insert_page_break, find_replace."),
			accountOption(),
			mcp.WithString("documentId",
				mcp.Required(),
				mcp.Description("The ID of the document"),
			),
			mcp.WithString("operations",
				mcp.Required(),
				mcp.Description(`JSON array of operations, e.g. [{"type":"insert_text","index":1,"text":"Hello"},{"type":"format_text","startIndex":1,"endIndex":6,"style":{"bold":true}}]`),
			),
		)
		s.AddTool(batchUpdateTool, common.Instrumented("docs_batch_update", "docs", "update", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleBatchUpdate(ctx, request, sc)
			}))
	}

	return nil
}

func handleGetContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID := request.GetString("documentId", "")
	if documentID == "" {
		return mcp.NewToolResultError("documentId is required"), nil
	}
	format := request.GetString("format", "text")

	client, err := docsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	doc, err := client.GetDocument(documentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get document: %v", err)), nil
	}

	switch format {
	case "text":
		text := docs.ExtractText(doc)
		return mcp.NewToolResultText(fmt.Sprintf("Document: %s (ID: %s)\n%s\n\n%s",
			doc.Title, documentID, docs.DocumentURL(documentID), text)), nil

	case "json":
		jsonBytes, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize document: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("Invalid format %q, must be 'text' or 'json'", format)), nil
	}
}

func handleCreateDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	title := request.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := docsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	doc, err := client.CreateDocument(title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create document: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Document created: %s (ID: %s)\n%s",
		doc.Title, doc.DocumentId, docs.DocumentURL(doc.DocumentId))), nil
}

func handleBatchUpdate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	documentID := request.GetString("documentId", "")
	operationsJSON := request.GetString("operations", "")
	if documentID == "" || operationsJSON == "" {
		return mcp.NewToolResultError("documentId and operations are required"), nil
	}

	var operations []*docs.Operation
	if err := json.Unmarshal([]byte(operationsJSON), &operations); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("operations must be a JSON array: %v", err)), nil
	}
	if len(operations) == 0 {
		return mcp.NewToolResultError("operations cannot be empty"), nil
	}

	client, err := docsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	if _, err := client.BatchUpdate(documentID, operations); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to apply edits: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Applied %d operations to document %s", len(operations), documentID)), nil
}
