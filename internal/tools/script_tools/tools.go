package script_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	script_v1 "google.golang.org/api/script/v1"

	"github.com/workspace-mcp/workspace-mcp/internal/script"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

// scriptMimeType identifies Apps Script projects in Drive. The Apps
// Script API itself has no project listing endpoint.
const scriptMimeType = "application/vnd.google-apps.script"

func accountOption() mcp.ToolOption {
	return mcp.WithString("user_google_email",
		mcp.Description("The Google account to act on. Optional when the request is already authenticated."),
	)
}

func scriptClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*script.Client, error) {
	account := common.AccountFromRequest(ctx, request)
	return sc.ScriptClientForAccount(account)
}

// RegisterScriptTools registers all Apps Script tools with the MCP
// server. Write operations are skipped when readOnly is set.
func RegisterScriptTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerDeploymentTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register deployment tools: %w", err)
	}

	listProjectsTool := mcp.NewTool("script_list_projects",
		mcp.WithDescription("List Apps Script projects accessible to the account"),
		accountOption(),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results (default: 25)"),
		),
	)
	s.AddTool(listProjectsTool, common.Instrumented("script_list_projects", "drive", "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListProjects(ctx, request, sc)
		}))

	getProjectTool := mcp.NewTool("script_get_project",
		mcp.WithDescription("Get Apps Script project metadata"),
		accountOption(),
		mcp.WithString("scriptId",
			mcp.Required(),
			mcp.Description("The script project ID"),
		),
	)
	s.AddTool(getProjectTool, common.Instrumented("script_get_project", "script", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetProject(ctx, request, sc)
		}))

	getContentTool := mcp.NewTool("script_get_content",
		mcp.WithDescription("Get the source files of an Apps Script project"),
		accountOption(),
		mcp.WithString("scriptId",
			mcp.Required(),
			mcp.Description("The script project ID"),
		),
		mcp.WithNumber("version",
			mcp.Description("Version number (default: current head)"),
		),
	)
	s.AddTool(getContentTool, common.Instrumented("script_get_content", "script", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetContent(ctx, request, sc)
		}))

	listProcessesTool := mcp.NewTool("script_list_processes",
		mcp.WithDescription("List recent executions of an Apps Script project"),
		accountOption(),
		mcp.WithString("scriptId",
			mcp.Required(),
			mcp.Description("The script project ID"),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of processes (default: 25)"),
		),
	)
	s.AddTool(listProcessesTool, common.Instrumented("script_list_processes", "script", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListProcesses(ctx, request, sc)
		}))

	if !readOnly {
		createProjectTool := mcp.NewTool("script_create_project",
			mcp.WithDescription("Create a new Apps Script project"),
			accountOption(),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Project title"),
			),
			mcp.WithString("parentId",
				mcp.Description("Drive file ID to bind the script to (e.g. a spreadsheet)"),
			),
		)
		s.AddTool(createProjectTool, common.Instrumented("script_create_project", "script", "create", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateProject(ctx, request, sc)
			}))

		updateContentTool := mcp.NewTool("script_update_content",
			mcp.WithDescription("Replace the source files of an Apps Script project"),
			accountOption(),
			mcp.WithString("scriptId",
				mcp.Required(),
				mcp.Description("The script project ID"),
			),
			mcp.WithString("files",
				mcp.Required(),
				mcp.Description(`JSON array of files, e.g. [{"name":"Code","type":"SERVER_JS","source":"function main() {}"}]`),
			),
		)
		s.AddTool(updateContentTool, common.Instrumented("script_update_content", "script", "update", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleUpdateContent(ctx, request, sc)
			}))

		runFunctionTool := mcp.NewTool("script_run_function",
			mcp.WithDescription("Run a function of a deployed Apps Script project"),
			accountOption(),
			mcp.WithString("scriptId",
				mcp.Required(),
				mcp.Description("The script project ID"),
			),
			mcp.WithString("functionName",
				mcp.Required(),
				mcp.Description("Name of the function to execute"),
			),
			mcp.WithString("parameters",
				mcp.Description("JSON array of positional parameters"),
			),
			mcp.WithBoolean("devMode",
				mcp.Description("Run the latest saved code instead of the deployed version"),
			),
		)
		s.AddTool(runFunctionTool, common.Instrumented("script_run_function", "script", "run", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleRunFunction(ctx, request, sc)
			}))

		createVersionTool := mcp.NewTool("script_create_version",
			mcp.WithDescription("Create an immutable version of an Apps Script project"),
			accountOption(),
			mcp.WithString("scriptId",
				mcp.Required(),
				mcp.Description("The script project ID"),
			),
			mcp.WithString("description",
				mcp.Description("Version description"),
			),
		)
		s.AddTool(createVersionTool, common.Instrumented("script_create_version", "script", "update", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateVersion(ctx, request, sc)
			}))
	}

	return nil
}

func handleListProjects(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	maxResults := int64(request.GetInt("maxResults", 25))

	account := common.AccountFromRequest(ctx, request)
	client, err := sc.DriveClientForAccount(account)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("mimeType='%s' and trashed = false", scriptMimeType)
	files, err := client.SearchFiles(query, maxResults, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list script projects: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d script projects:\n", len(files))
	for i, f := range files {
		fmt.Fprintf(&b, "%d. %s (ID: %s, Modified: %s)\n", i+1, f.Name, f.Id, f.ModifiedTime)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetProject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scriptID := request.GetString("scriptId", "")
	if scriptID == "" {
		return mcp.NewToolResultError("scriptId is required"), nil
	}

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	project, err := client.GetProject(scriptID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get project: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s (ID: %s)\n", project.Title, project.ScriptId)
	fmt.Fprintf(&b, "Created: %s\nUpdated: %s\n", project.CreateTime, project.UpdateTime)
	if project.ParentId != "" {
		fmt.Fprintf(&b, "Bound to: %s\n", project.ParentId)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateProject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	title := request.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	project, err := client.CreateProject(title, request.GetString("parentId", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create project: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Project created: %s (ID: %s)", project.Title, project.ScriptId)), nil
}

func handleGetContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scriptID := request.GetString("scriptId", "")
	if scriptID == "" {
		return mcp.NewToolResultError("scriptId is required"), nil
	}
	version := int64(request.GetInt("version", 0))

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	content, err := client.GetContent(scriptID, version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get content: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project %s has %d files:\n", scriptID, len(content.Files))
	for _, f := range content.Files {
		fmt.Fprintf(&b, "\n--- %s (%s) ---\n%s\n", f.Name, f.Type, f.Source)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleUpdateContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scriptID := request.GetString("scriptId", "")
	filesJSON := request.GetString("files", "")
	if scriptID == "" || filesJSON == "" {
		return mcp.NewToolResultError("scriptId and files are required"), nil
	}

	var files []*script_v1.File
	if err := json.Unmarshal([]byte(filesJSON), &files); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("files must be a JSON array: %v", err)), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultError("files cannot be empty"), nil
	}

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	content, err := client.UpdateContent(scriptID, files)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update content: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated project %s (%d files)", scriptID, len(content.Files))), nil
}

func handleRunFunction(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scriptID := request.GetString("scriptId", "")
	functionName := request.GetString("functionName", "")
	if scriptID == "" || functionName == "" {
		return mcp.NewToolResultError("scriptId and functionName are required"), nil
	}

	var parameters []any
	if parametersJSON := request.GetString("parameters", ""); parametersJSON != "" {
		if err := json.Unmarshal([]byte(parametersJSON), &parameters); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parameters must be a JSON array: %v", err)), nil
		}
	}

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	result, err := client.RunFunction(scriptID, functionName, parameters, request.GetBool("devMode", false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to run function: %v", err)), nil
	}
	if result.ErrorMessage != "" {
		return mcp.NewToolResultError(fmt.Sprintf("Script error: %s", result.ErrorMessage)), nil
	}

	resultJSON, err := json.MarshalIndent(result.Result, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Function %s completed (result not serializable: %v)", functionName, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Function %s returned:\n%s", functionName, resultJSON)), nil
}

func handleCreateVersion(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scriptID := request.GetString("scriptId", "")
	if scriptID == "" {
		return mcp.NewToolResultError("scriptId is required"), nil
	}

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	version, err := client.CreateVersion(scriptID, request.GetString("description", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create version: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Version %d created for project %s", version.VersionNumber, scriptID)), nil
}

func handleListProcesses(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scriptID := request.GetString("scriptId", "")
	if scriptID == "" {
		return mcp.NewToolResultError("scriptId is required"), nil
	}
	pageSize := int64(request.GetInt("pageSize", 25))

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	processes, err := client.ListProcesses(scriptID, pageSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list processes: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d processes for project %s:\n", len(processes), scriptID)
	for i, p := range processes {
		fmt.Fprintf(&b, "%d. %s (%s, %s, started %s, duration %s)\n",
			i+1, p.FunctionName, p.ProcessType, p.ProcessStatus, p.StartTime, p.Duration)
	}
	return mcp.NewToolResultText(b.String()), nil
}
