package google_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/google"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

// RegisterGoogleTools registers the OAuth bootstrap tools used by stdio
// deployments, where no browser redirect back to the server is possible.
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	startAuthTool := mcp.NewTool("start_google_auth",
		mcp.WithDescription("Get the OAuth URL to authorize Google Workspace access (Gmail, Drive, Sheets, Docs, Chat, Apps Script) for an account"),
		mcp.WithString("user_google_email",
			mcp.Description("Account to authorize (default: 'default')"),
		),
	)
	s.AddTool(startAuthTool, common.Instrumented("start_google_auth", "", "", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleStartAuth(ctx, request, sc)
		}))

	saveCodeTool := mcp.NewTool("google_save_auth_code",
		mcp.WithDescription("Complete Google Workspace authentication with the authorization code from the OAuth consent flow"),
		mcp.WithString("user_google_email",
			mcp.Description("Account being authorized (default: 'default')"),
		),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)
	s.AddTool(saveCodeTool, common.Instrumented("google_save_auth_code", "", "", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveAuthCode(ctx, request, sc)
		}))

	listAccountsTool := mcp.NewTool("google_list_accounts",
		mcp.WithDescription("List accounts that already hold a stored Google credential"),
	)
	s.AddTool(listAccountsTool, common.Instrumented("google_list_accounts", "", "", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAccounts(ctx, request, sc)
		}))

	return nil
}

func handleStartAuth(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := request.GetString("user_google_email", google.DefaultAccount)

	authURL, err := google.GetAuthURL(account)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build auth URL: %v", err)), nil
	}

	result := fmt.Sprintf(`To authorize Google Workspace access for account %q:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant access
3. Copy the authorization code

4. Call the google_save_auth_code tool with the code and account name to complete authentication`,
		account, authURL)
	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := request.GetString("user_google_email", google.DefaultAccount)
	authCode := request.GetString("authCode", "")
	if authCode == "" {
		return mcp.NewToolResultError("authCode is required"), nil
	}

	if err := google.SaveTokenForAccount(ctx, account, authCode); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for account %s: %v", account, err)), nil
	}

	// Refresh tokens outlive any single access token, so the credential
	// is registered without an expiry. Cached clients built on the old
	// (possibly broken) token are dropped.
	if sessions := sc.Sessions(); sessions != nil {
		sessions.RegisterCredential(account, time.Time{})
	}
	sc.InvalidateAccount(account)

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account %q. All Google Workspace tools are now available for this account.", account)), nil
}

func handleListAccounts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	accounts, err := google.ListAccounts()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list accounts: %v", err)), nil
	}
	if len(accounts) == 0 {
		return mcp.NewToolResultText("No authorized accounts. Use start_google_auth to begin."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Authorized accounts (%d):\n- %s",
		len(accounts), strings.Join(accounts, "\n- "))), nil
}
