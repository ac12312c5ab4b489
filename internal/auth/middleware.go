package auth

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/logging"
)

// MetricsRecorder counts resolution outcomes. Implemented by the
// instrumentation metrics; nil disables recording.
type MetricsRecorder interface {
	RecordAuthResolution(method string)
}

// unresolvedMethod is the metrics label for requests no source resolved.
const unresolvedMethod = "unresolved"

// Middleware returns a tool-handler middleware that runs the resolver
// once per tool invocation and writes the outcome into the request
// context before dispatching to the handler.
//
// Handler errors pass through unchanged. Authentication failures from the
// handler are expected in normal operation, so they are logged at info
// without a stack-style dump; everything else is logged at error.
func Middleware(resolver *Resolver, metrics MetricsRecorder, logger *slog.Logger) server.ToolHandlerMiddleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			req := requestFromContext(ctx, request)

			id := resolver.Resolve(ctx, req)
			if id != nil {
				ctx = WithIdentity(ctx, id)
				if metrics != nil {
					metrics.RecordAuthResolution(string(id.Method))
				}
			} else if metrics != nil {
				metrics.RecordAuthResolution(unresolvedMethod)
			}

			result, err := next(ctx, request)
			if err != nil {
				toolLogger := logging.WithTool(logger, request.Params.Name)
				if IsAuthError(err) {
					toolLogger.Info("Tool rejected unauthenticated request",
						logging.Err(err))
				} else {
					toolLogger.Error("Tool handler failed",
						logging.Err(err))
				}
				return result, err
			}
			return result, nil
		}
	}
}

// requestFromContext assembles the resolver inputs from the dispatch
// context and the tool call itself.
func requestFromContext(ctx context.Context, request mcp.CallToolRequest) Request {
	req := Request{
		AuthorizationHeader: AuthorizationHeaderFromContext(ctx),
		ExplicitUser:        request.GetString("user_google_email", ""),
	}
	if token, ok := FrameworkTokenFromContext(ctx); ok {
		req.FrameworkToken = token
	}
	if session := server.ClientSessionFromContext(ctx); session != nil {
		req.MCPSessionID = session.SessionID()
	}
	return req
}
