package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/workspace-mcp/workspace-mcp/internal/instrumentation"
	"github.com/workspace-mcp/workspace-mcp/internal/logging"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

// ToolHandler is the mcp-go tool handler signature.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Instrumented wraps a tool handler with tracing, metrics and audit
// logging. serviceName and operation identify the Google API surface the
// tool talks to; pass empty strings for tools that stay local.
//
// The return type is deliberately an unnamed func so the result is
// assignable to mcp-go's server.ToolHandlerFunc at AddTool call sites.
//
// Usage:
//
//	s.AddTool(myTool, common.Instrumented("my_tool", "gmail", "list", sc, handler))
func Instrumented(toolName, serviceName, operation string, sc *server.ServerContext, handler ToolHandler) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		logger := sc.Logger()

		account := AccountFromRequest(ctx, request)

		attrs := []attribute.KeyValue{
			attribute.String(instrumentation.SpanAttrAccount, instrumentation.ExtractUserDomain(account)),
		}
		if serviceName != "" {
			attrs = append(attrs,
				attribute.String(instrumentation.SpanAttrService, serviceName),
				attribute.String(instrumentation.SpanAttrOperation, operation),
			)
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs...)
		defer span.End()

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}
		if err != nil {
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}

		if metrics != nil {
			metrics.RecordToolInvocationWithAccount(ctx, toolName, status, account, duration)
			if serviceName != "" {
				metrics.RecordGoogleAPIOperation(ctx, serviceName, operation, status, duration)
			}
		}

		logger.Debug("Tool invocation",
			"tool", toolName,
			"account", logging.AnonymizeEmail(account),
			"status", status,
			"duration_ms", duration.Milliseconds(),
		)

		return result, err
	}
}
