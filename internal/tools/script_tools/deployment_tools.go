package script_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

// registerDeploymentTools registers Apps Script deployment tools.
func registerDeploymentTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("script_list_deployments",
		mcp.WithDescription("List deployments of an Apps Script project"),
		accountOption(),
		mcp.WithString("scriptId",
			mcp.Required(),
			mcp.Description("The script project ID"),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of deployments (default: 25)"),
		),
	)
	s.AddTool(listTool, common.Instrumented("script_list_deployments", "script", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListDeployments(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("script_create_deployment",
		mcp.WithDescription("Deploy a version of an Apps Script project"),
		accountOption(),
		mcp.WithString("scriptId",
			mcp.Required(),
			mcp.Description("The script project ID"),
		),
		mcp.WithNumber("version",
			mcp.Required(),
			mcp.Description("Version number to deploy"),
		),
		mcp.WithString("description",
			mcp.Description("Deployment description"),
		),
	)
	s.AddTool(createTool, common.Instrumented("script_create_deployment", "script", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDeployment(ctx, request, sc)
		}))

	updateTool := mcp.NewTool("script_update_deployment",
		mcp.WithDescription("Point an existing deployment at a different version"),
		accountOption(),
		mcp.WithString("scriptId",
			mcp.Required(),
			mcp.Description("The script project ID"),
		),
		mcp.WithString("deploymentId",
			mcp.Required(),
			mcp.Description("The deployment ID"),
		),
		mcp.WithNumber("version",
			mcp.Required(),
			mcp.Description("Version number to deploy"),
		),
		mcp.WithString("description",
			mcp.Description("Deployment description"),
		),
	)
	s.AddTool(updateTool, common.Instrumented("script_update_deployment", "script", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateDeployment(ctx, request, sc)
		}))

	deleteTool := mcp.NewTool("script_delete_deployment",
		mcp.WithDescription("Delete a deployment of an Apps Script project"),
		accountOption(),
		mcp.WithString("scriptId",
			mcp.Required(),
			mcp.Description("The script project ID"),
		),
		mcp.WithString("deploymentId",
			mcp.Required(),
			mcp.Description("The deployment ID"),
		),
	)
	s.AddTool(deleteTool, common.Instrumented("script_delete_deployment", "script", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteDeployment(ctx, request, sc)
		}))

	return nil
}

func handleListDeployments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scriptID := request.GetString("scriptId", "")
	if scriptID == "" {
		return mcp.NewToolResultError("scriptId is required"), nil
	}
	pageSize := int64(request.GetInt("pageSize", 25))

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	deployments, err := client.ListDeployments(scriptID, pageSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list deployments: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d deployments for project %s:\n", len(deployments), scriptID)
	for i, d := range deployments {
		desc := ""
		version := int64(0)
		if d.DeploymentConfig != nil {
			desc = d.DeploymentConfig.Description
			version = d.DeploymentConfig.VersionNumber
		}
		fmt.Fprintf(&b, "%d. %s (version %d) %s\n", i+1, d.DeploymentId, version, desc)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateDeployment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scriptID := request.GetString("scriptId", "")
	if scriptID == "" {
		return mcp.NewToolResultError("scriptId is required"), nil
	}
	version := int64(request.GetInt("version", 0))
	if version <= 0 {
		return mcp.NewToolResultError("version is required"), nil
	}

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	deployment, err := client.CreateDeployment(scriptID, version, request.GetString("description", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create deployment: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deployment created: %s (version %d)", deployment.DeploymentId, version)), nil
}

func handleUpdateDeployment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scriptID := request.GetString("scriptId", "")
	deploymentID := request.GetString("deploymentId", "")
	if scriptID == "" || deploymentID == "" {
		return mcp.NewToolResultError("scriptId and deploymentId are required"), nil
	}
	version := int64(request.GetInt("version", 0))
	if version <= 0 {
		return mcp.NewToolResultError("version is required"), nil
	}

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	deployment, err := client.UpdateDeployment(scriptID, deploymentID, version, request.GetString("description", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update deployment: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deployment %s now serves version %d", deployment.DeploymentId, version)), nil
}

func handleDeleteDeployment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	scriptID := request.GetString("scriptId", "")
	deploymentID := request.GetString("deploymentId", "")
	if scriptID == "" || deploymentID == "" {
		return mcp.NewToolResultError("scriptId and deploymentId are required"), nil
	}

	client, err := scriptClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	if err := client.DeleteDeployment(scriptID, deploymentID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete deployment: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deployment %s deleted", deploymentID)), nil
}
