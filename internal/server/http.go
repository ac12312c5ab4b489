package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/attachments"
	"github.com/workspace-mcp/workspace-mcp/internal/auth"
	"github.com/workspace-mcp/workspace-mcp/internal/mcp/oauth"
)

// HTTPConfig configures the streamable-HTTP transport.
type HTTPConfig struct {
	// BaseURL is the externally visible URL of this server.
	BaseURL string

	// RequireAuth rejects unauthenticated requests at the transport
	// instead of deferring to per-tool enforcement.
	RequireAuth bool

	// DisableStreaming serves plain JSON responses instead of SSE.
	DisableStreaming bool

	Logger *slog.Logger
}

// HTTPServer serves the MCP streamable-HTTP transport with OAuth token
// validation, protected-resource metadata, attachment downloads, and
// health endpoints on one mux.
type HTTPServer struct {
	mcpServer    *mcpserver.MCPServer
	oauthHandler *oauth.Handler
	attachments  *attachments.Store
	health       *HealthChecker
	config       HTTPConfig
	httpServer   *http.Server
	logger       *slog.Logger
}

// NewHTTPServer wires the transport mux. attachmentStore and health may
// be nil to skip their endpoints.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, oauthHandler *oauth.Handler, attachmentStore *attachments.Store, health *HealthChecker, config HTTPConfig) (*HTTPServer, error) {
	if err := validateHTTPSRequirement(config.BaseURL); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &HTTPServer{
		mcpServer:    mcpServer,
		oauthHandler: oauthHandler,
		attachments:  attachmentStore,
		health:       health,
		config:       config,
		logger:       config.Logger,
	}, nil
}

// Start serves the transport on addr, blocking until the server stops.
func (s *HTTPServer) Start(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/.well-known/oauth-protected-resource", s.oauthHandler.ServeProtectedResourceMetadata)

	streamableOpts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath("/mcp"),
		// The Authorization header must survive into the tool context so
		// the resolver can evaluate bearer tokens per request.
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if header := r.Header.Get("Authorization"); header != "" {
				ctx = auth.WithAuthorizationHeader(ctx, header)
			}
			return ctx
		}),
	}
	if s.config.DisableStreaming {
		streamableOpts = append(streamableOpts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, streamableOpts...)

	var mcpHandler http.Handler = streamable
	mcpHandler = oauth.SSOAccessTokenMiddleware(&oauth.SSOMiddlewareConfig{
		Store:  s.oauthHandler.Store(),
		Logger: s.logger,
	})(mcpHandler)
	if s.config.RequireAuth {
		mcpHandler = s.oauthHandler.ValidateGoogleToken(mcpHandler)
	} else {
		mcpHandler = s.oauthHandler.OptionalGoogleToken(mcpHandler)
	}
	mux.Handle("/mcp", mcpHandler)

	if s.attachments != nil {
		mux.Handle("/attachments/", http.StripPrefix("/attachments/", s.attachments.Handler()))
	}
	if s.health != nil {
		s.health.RegisterHealthEndpoints(mux)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting streamable-http server", "addr", addr, "base_url", s.config.BaseURL)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the transport.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.logger.Info("shutting down streamable-http server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// validateHTTPSRequirement enforces HTTPS for non-loopback deployments,
// per OAuth 2.1.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
		return nil
	default:
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}
}
