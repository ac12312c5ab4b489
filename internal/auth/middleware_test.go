package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetricsRecorder struct {
	methods []string
}

func (r *fakeMetricsRecorder) RecordAuthResolution(method string) {
	r.methods = append(r.methods, method)
}

func middlewareRequest(tool string) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = tool
	return req
}

func TestMiddlewareWritesIdentityIntoContext(t *testing.T) {
	resolver := NewResolver(&fakeVerifier{}, newFakeSessionStore(), false, nil)
	metrics := &fakeMetricsRecorder{}

	var seen *Identity
	next := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		seen, _ = IdentityFromContext(ctx)
		return mcp.NewToolResultText("ok"), nil
	}

	handler := Middleware(resolver, metrics, nil)(next)

	ctx := WithFrameworkToken(context.Background(), &FrameworkToken{Email: "user@example.com"})
	result, err := handler(ctx, middlewareRequest("gmail_search_messages"))
	require.NoError(t, err)
	require.NotNil(t, result)

	require.NotNil(t, seen, "handler should observe the resolved identity")
	assert.Equal(t, "user@example.com", seen.Email)
	assert.Equal(t, MethodFrameworkToken, seen.Method)
	assert.Equal(t, []string{string(MethodFrameworkToken)}, metrics.methods)
}

func TestMiddlewareDispatchesUnresolvedRequests(t *testing.T) {
	resolver := NewResolver(&fakeVerifier{}, newFakeSessionStore(), false, nil)
	metrics := &fakeMetricsRecorder{}

	dispatched := false
	next := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dispatched = true
		_, ok := IdentityFromContext(ctx)
		assert.False(t, ok, "no identity should be present for unresolved requests")
		return mcp.NewToolResultText("ok"), nil
	}

	handler := Middleware(resolver, metrics, nil)(next)

	_, err := handler(context.Background(), middlewareRequest("start_google_auth"))
	require.NoError(t, err)
	assert.True(t, dispatched, "unresolved requests still reach the handler")
	assert.Equal(t, []string{unresolvedMethod}, metrics.methods)
}

func TestMiddlewarePassesAuthErrorThroughUnchanged(t *testing.T) {
	resolver := NewResolver(&fakeVerifier{}, newFakeSessionStore(), false, nil)

	next := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, ErrNotAuthenticated
	}

	handler := Middleware(resolver, nil, nil)(next)

	result, err := handler(context.Background(), middlewareRequest("gmail_search_messages"))
	assert.Nil(t, result)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestMiddlewarePassesGenericErrorThroughUnchanged(t *testing.T) {
	resolver := NewResolver(&fakeVerifier{}, newFakeSessionStore(), false, nil)

	sentinel := errors.New("quota exceeded")
	next := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, sentinel
	}

	handler := Middleware(resolver, nil, nil)(next)

	_, err := handler(context.Background(), middlewareRequest("drive_search_files"))
	require.ErrorIs(t, err, sentinel)
}
