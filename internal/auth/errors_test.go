package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireIdentity(t *testing.T) {
	ctx := context.Background()

	_, err := RequireIdentity(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotAuthenticated))

	ctx = WithIdentity(ctx, &Identity{Email: "jane@example.com", Method: MethodBearerOpaque})
	id, err := RequireIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", id.Email)
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrNotAuthenticated, true},
		{"wrapped sentinel", fmt.Errorf("gmail: %w", ErrNotAuthenticated), true},
		{"google invalid_grant", errors.New("oauth2: \"invalid_grant\" \"Token has been expired or revoked.\""), true},
		{"unauthorized response", errors.New("googleapi: Error 401: Unauthorized"), true},
		{"plain failure", errors.New("connection reset by peer"), false},
		{"not found", errors.New("file not found: 1abc"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthError(tt.err))
		})
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := IdentityFromContext(ctx); ok {
		t.Fatal("expected no identity on fresh context")
	}

	want := &Identity{Email: "jane@example.com", Method: MethodSessionBinding}
	ctx = WithIdentity(ctx, want)
	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, want, got)
}

func TestAuthorizationHeaderContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, AuthorizationHeaderFromContext(ctx))

	ctx = WithAuthorizationHeader(ctx, "Bearer abc")
	assert.Equal(t, "Bearer abc", AuthorizationHeaderFromContext(ctx))
}
