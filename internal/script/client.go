package script

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/api/option"
	script "google.golang.org/api/script/v1"

	"github.com/workspace-mcp/workspace-mcp/internal/google"
)

// Client wraps the Apps Script service for a single account.
type Client struct {
	svc     *script.Service
	account string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates an Apps Script client authenticated as the
// given account.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, nil)
}

// NewClientForAccountWithProvider creates an Apps Script client whose
// OAuth token comes from the given provider. A nil provider falls back to
// the local token files.
func NewClientForAccountWithProvider(ctx context.Context, account string, provider google.TokenProvider) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccountWithProvider(ctx, account, provider)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w. Please authenticate with Google through your MCP client", account, err)
	}

	svc, err := script.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Apps Script service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// GetProject fetches project metadata.
func (c *Client) GetProject(scriptID string) (*script.Project, error) {
	project, err := c.svc.Projects.Get(scriptID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get script project %s: %w", scriptID, err)
	}
	return project, nil
}

// CreateProject creates a script project, optionally bound to a parent
// Drive file (a Sheet or Doc the script extends).
func (c *Client) CreateProject(title, parentID string) (*script.Project, error) {
	if title == "" {
		return nil, fmt.Errorf("project title is required")
	}

	project, err := c.svc.Projects.Create(&script.CreateProjectRequest{
		Title:    title,
		ParentId: parentID,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create script project %s: %w", title, err)
	}
	return project, nil
}

// GetContent fetches the source files of a project. A version of 0 reads
// the head version.
func (c *Client) GetContent(scriptID string, version int64) (*script.Content, error) {
	call := c.svc.Projects.GetContent(scriptID)
	if version > 0 {
		call = call.VersionNumber(version)
	}
	content, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get content of %s: %w", scriptID, err)
	}
	return content, nil
}

// UpdateContent replaces the source files of a project.
func (c *Client) UpdateContent(scriptID string, files []*script.File) (*script.Content, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one source file is required")
	}

	content, err := c.svc.Projects.UpdateContent(scriptID, &script.Content{Files: files}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update content of %s: %w", scriptID, err)
	}
	return content, nil
}

// RunResult is the outcome of a script function execution.
type RunResult struct {
	Result       any
	ErrorMessage string
}

// RunFunction executes a function in a deployed script. devMode runs the
// head version instead of the deployed one.
func (c *Client) RunFunction(scriptID, functionName string, parameters []any, devMode bool) (*RunResult, error) {
	if functionName == "" {
		return nil, fmt.Errorf("function name is required")
	}

	op, err := c.svc.Scripts.Run(scriptID, &script.ExecutionRequest{
		Function:   functionName,
		Parameters: parameters,
		DevMode:    devMode,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to run %s in %s: %w", functionName, scriptID, err)
	}

	if op.Error != nil {
		msg := op.Error.Message
		if msg == "" {
			msg = "unknown execution error"
		}
		return &RunResult{ErrorMessage: msg}, nil
	}

	result := &RunResult{}
	if len(op.Response) > 0 {
		var resp struct {
			Result any `json:"result"`
		}
		if err := json.Unmarshal([]byte(op.Response), &resp); err == nil {
			result.Result = resp.Result
		}
	}
	return result, nil
}

// CreateVersion snapshots the project head as a new immutable version.
func (c *Client) CreateVersion(scriptID, description string) (*script.Version, error) {
	version, err := c.svc.Projects.Versions.Create(scriptID, &script.Version{
		Description: description,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create version of %s: %w", scriptID, err)
	}
	return version, nil
}

// CreateDeployment deploys a version of the project. A version of 0
// deploys head.
func (c *Client) CreateDeployment(scriptID string, version int64, description string) (*script.Deployment, error) {
	deployment, err := c.svc.Projects.Deployments.Create(scriptID, &script.DeploymentConfig{
		VersionNumber: version,
		Description:   description,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create deployment of %s: %w", scriptID, err)
	}
	return deployment, nil
}

// ListDeployments lists the deployments of a project.
func (c *Client) ListDeployments(scriptID string, pageSize int64) ([]*script.Deployment, error) {
	if pageSize <= 0 {
		pageSize = 50
	}
	res, err := c.svc.Projects.Deployments.List(scriptID).PageSize(pageSize).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments of %s: %w", scriptID, err)
	}
	return res.Deployments, nil
}

// UpdateDeployment points an existing deployment at a different version.
func (c *Client) UpdateDeployment(scriptID, deploymentID string, version int64, description string) (*script.Deployment, error) {
	if deploymentID == "" {
		return nil, fmt.Errorf("deploymentID is required")
	}

	deployment, err := c.svc.Projects.Deployments.Update(scriptID, deploymentID, &script.UpdateDeploymentRequest{
		DeploymentConfig: &script.DeploymentConfig{
			VersionNumber: version,
			Description:   description,
		},
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update deployment %s: %w", deploymentID, err)
	}
	return deployment, nil
}

// DeleteDeployment removes a deployment.
func (c *Client) DeleteDeployment(scriptID, deploymentID string) error {
	if deploymentID == "" {
		return fmt.Errorf("deploymentID is required")
	}
	if _, err := c.svc.Projects.Deployments.Delete(scriptID, deploymentID).Do(); err != nil {
		return fmt.Errorf("failed to delete deployment %s: %w", deploymentID, err)
	}
	return nil
}

// ListProcesses lists recent executions of a project's functions.
func (c *Client) ListProcesses(scriptID string, pageSize int64) ([]*script.GoogleAppsScriptTypeProcess, error) {
	if pageSize <= 0 {
		pageSize = 50
	}
	call := c.svc.Processes.List().PageSize(pageSize)
	if scriptID != "" {
		call = call.UserProcessFilterScriptId(scriptID)
	}
	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list script processes: %w", err)
	}
	return res.Processes, nil
}
