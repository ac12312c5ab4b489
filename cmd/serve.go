package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/attachments"
	"github.com/workspace-mcp/workspace-mcp/internal/auth"
	"github.com/workspace-mcp/workspace-mcp/internal/google"
	"github.com/workspace-mcp/workspace-mcp/internal/instrumentation"
	"github.com/workspace-mcp/workspace-mcp/internal/mcp/oauth"
	"github.com/workspace-mcp/workspace-mcp/internal/resources"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/session"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/chat_tools"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/docs_tools"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/drive_tools"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/gmail_tools"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/google_tools"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/script_tools"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/sheets_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions collects the serve command's flag values.
type serveOptions struct {
	debugMode        bool
	transport        string
	httpAddr         string
	yolo             bool
	disableStreaming bool
	baseURL          string
	requireAuth      bool
	attachmentDir    string
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google
Workspace tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode, providing only safe
  operations. Use --yolo to enable write operations (email sending,
  document editing, script execution, etc.)

OAuth Configuration:
  The Google OAuth client used for the start_google_auth flow is read
  from the GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET
  environment variables.

  HTTP Transport:
    Base URL (required for deployed instances):
      --base-url https://your-domain.com OR MCP_BASE_URL env var
      Auto-detected for localhost (development only)
    Clients present Google OAuth bearer tokens on each request; use
    --require-auth to reject unauthenticated requests at the transport.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (email sending, document editing, etc.). Default is read-only mode.")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Public base URL for OAuth (HTTP transport only). Required for deployed instances. Can also use MCP_BASE_URL env var. Example: https://mcp.example.com")
	cmd.Flags().BoolVar(&opts.requireAuth, "require-auth", false, "Reject unauthenticated HTTP requests at the transport instead of per tool. Can also use MCP_REQUIRE_AUTH env var.")
	cmd.Flags().StringVar(&opts.attachmentDir, "attachment-dir", "", "Directory for downloaded attachment files. Defaults to a fresh directory under the OS temp dir.")

	// Metrics server flags
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Log to stderr so stdio transport keeps stdout clean for the protocol
	level := slog.LevelInfo
	if opts.debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load config from environment if not set via flags
	if opts.metrics.Addr == "" || opts.metrics.Addr == ":9090" {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			opts.metrics.Addr = addr
		}
	}
	if os.Getenv("METRICS_ENABLED") == "false" {
		opts.metrics.Enabled = false
	}
	if !opts.requireAuth && os.Getenv("MCP_REQUIRE_AUTH") == "true" {
		opts.requireAuth = true
	}
	if opts.baseURL == "" {
		opts.baseURL = os.Getenv("MCP_BASE_URL")
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil && opts.transport != "stdio" {
			logger.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.transport != "stdio" && opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(opts.metrics.Addr, provider)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("metrics server started", "addr", metricsServer.Addr())
	}
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}
	}()

	// Session store tracks which accounts hold valid credentials and the
	// MCP-session bindings the auth resolver consults.
	sessions := session.NewStoreWithLogger(24*time.Hour, logger)
	defer sessions.Stop()

	// Seed the session store with accounts that already have cached
	// refresh tokens so stdio single-user resolution works immediately.
	if accounts, err := google.ListAccounts(); err == nil {
		for _, account := range accounts {
			sessions.RegisterCredential(account, time.Time{})
		}
	}

	attachmentStore, err := attachments.NewStore(opts.attachmentDir, attachments.DefaultTTL, logger)
	if err != nil {
		return fmt.Errorf("failed to create attachment store: %w", err)
	}
	defer attachmentStore.Stop()

	// Create server context
	serverContext := server.NewServerContext(shutdownCtx, logger)
	serverContext.SetSessions(sessions)
	serverContext.SetAttachments(attachmentStore)
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
	}

	// Token provider backing Google API client construction. Stdio reads
	// local token files; HTTP serves each caller with the bearer token
	// the middleware validated, falling back to token files for accounts
	// that authenticated through the auth-code tool flow.
	var tokenStore storage.TokenStore
	if opts.transport == "streamable-http" {
		tokenStore = memory.New()
		serverContext.SetTokenProvider(oauth.NewTokenProviderWithFallback(tokenStore, google.NewFileTokenProvider()))
		serverContext.SetBaseURL(resolveBaseURL(opts.baseURL, opts.httpAddr))
	} else {
		serverContext.SetTokenProvider(google.NewFileTokenProvider())
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil && opts.transport != "stdio" {
			logger.Error("server context shutdown failed", "error", err)
		}
	}()

	// Auth resolver runs as tool-handler middleware on every invocation.
	// Stdio is inherently single-user; that enables the single-session
	// fallback in the resolution chain.
	singleUserMode := opts.transport == "stdio"
	resolver := auth.NewResolver(auth.NewGoogleVerifier(), sessions, singleUserMode, logger)
	var authMetrics auth.MetricsRecorder
	if provider.Enabled() {
		authMetrics = provider.Metrics()
	}

	mcpSrv := mcpserver.NewMCPServer("workspace-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithToolHandlerMiddleware(auth.Middleware(resolver, authMetrics, logger)),
	)

	// readOnly is the inverse of yolo
	readOnly := !opts.yolo

	if opts.transport != "stdio" {
		if readOnly {
			logger.Info("starting server in read-only mode (use --yolo to enable write operations)")
		} else {
			logger.Info("starting server with write operations enabled (--yolo flag is set)")
		}
	}

	// Register all tools and resources
	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch opts.transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, sessions, attachmentStore, tokenStore, opts, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Auth",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, ctx)
			},
		},
		{
			name: "Gmail",
			register: func() error {
				return gmail_tools.RegisterGmailTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Drive",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Docs",
			register: func() error {
				return docs_tools.RegisterDocsTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Sheets",
			register: func() error {
				return sheets_tools.RegisterSheetsTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Chat",
			register: func() error {
				return chat_tools.RegisterChatTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Apps Script",
			register: func() error {
				return script_tools.RegisterScriptTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "User Resources",
			register: func() error {
				return resources.RegisterUserResources(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, sessions *session.Store, attachmentStore *attachments.Store, tokenStore storage.TokenStore, opts serveOptions, logger *slog.Logger) error {
	baseURL := resolveBaseURL(opts.baseURL, opts.httpAddr)
	if opts.baseURL == "" {
		logger.Info("no base URL configured, using auto-detected", "base_url", baseURL)
		logger.Info("for deployed instances, set --base-url flag or MCP_BASE_URL env var")
	} else {
		logger.Info("using configured base URL", "base_url", baseURL)
	}

	// The token store holds bearer tokens the middleware validated; the
	// server context's token provider reads the same store when building
	// Google API clients. In-memory only; tokens are re-verified after a
	// restart.
	oauthHandler := oauth.NewHandler(&oauth.Config{
		Resource:        baseURL,
		SupportedScopes: google.DefaultOAuthScopes,
		Logger:          logger,
	}, tokenStore, sessions, auth.NewGoogleVerifier())

	healthChecker := server.NewHealthChecker(serverContext, sessions)
	healthChecker.SetReady(true)

	httpServer, err := server.NewHTTPServer(mcpSrv, oauthHandler, attachmentStore, healthChecker, server.HTTPConfig{
		BaseURL:          baseURL,
		RequireAuth:      opts.requireAuth,
		DisableStreaming: opts.disableStreaming,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("streamable HTTP server starting",
		"addr", opts.httpAddr,
		"mcp_endpoint", "/mcp",
		"health_endpoints", "/healthz /readyz",
		"oauth_metadata", "/.well-known/oauth-protected-resource",
		"attachments_endpoint", "/attachments/")
	if opts.requireAuth {
		logger.Info("clients must authenticate with Google OAuth to access this server")
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(opts.httpAddr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// resolveBaseURL falls back to a localhost URL derived from the listen
// address when no base URL is configured. Only suitable for development;
// deployed instances must configure the real external URL.
func resolveBaseURL(baseURL, addr string) string {
	if baseURL != "" {
		return baseURL
	}
	if len(addr) > 0 && addr[0] == ':' {
		return fmt.Sprintf("http://localhost%s", addr)
	}
	return fmt.Sprintf("http://%s", addr)
}
