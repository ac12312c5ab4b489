package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage/memory"

	"github.com/workspace-mcp/workspace-mcp/internal/auth"
	"github.com/workspace-mcp/workspace-mcp/internal/session"
)

type stubVerifier struct {
	result *auth.VerifiedToken
	err    error
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (*auth.VerifiedToken, error) {
	return v.result, v.err
}

func newTestHandler(t *testing.T, verifier auth.TokenVerifier) (*Handler, *session.Store) {
	t.Helper()
	store := memory.New()
	t.Cleanup(store.Stop)
	sessions := session.NewStore()
	t.Cleanup(sessions.Stop)
	config := &Config{
		Resource:        "https://mcp.example.com",
		SupportedScopes: []string{"openid", "https://mail.google.com/"},
	}
	return NewHandler(config, store, sessions, verifier), sessions
}

func TestServeProtectedResourceMetadata(t *testing.T) {
	h, _ := newTestHandler(t, &stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/.well-known/oauth-protected-resource", nil)
	rec := httptest.NewRecorder()
	h.ServeProtectedResourceMetadata(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var metadata ProtectedResourceMetadata
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&metadata))
	assert.Equal(t, "https://mcp.example.com", metadata.Resource)
	assert.Equal(t, []string{"https://accounts.google.com"}, metadata.AuthorizationServers)
	assert.Contains(t, metadata.ScopesSupported, "openid")
}

func TestValidateGoogleTokenMissingHeader(t *testing.T) {
	h, _ := newTestHandler(t, &stubVerifier{})

	handler := h.ValidateGoogleToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "resource_metadata")
}

func TestValidateGoogleTokenSuccess(t *testing.T) {
	verifier := &stubVerifier{result: &auth.VerifiedToken{
		Email: "jane@example.com",
		Sub:   "123",
	}}
	h, sessions := newTestHandler(t, verifier)

	var sawUser, sawFramework bool
	handler := h.ValidateGoogleToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userInfo, ok := GetUserFromContext(r.Context()); ok {
			sawUser = userInfo.Email == "jane@example.com"
		}
		if token, ok := auth.FrameworkTokenFromContext(r.Context()); ok {
			sawFramework = token.Email == "jane@example.com"
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer ya29.valid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawUser, "validated user info must be in context")
	assert.True(t, sawFramework, "framework credential must be in context")
	assert.True(t, sessions.HasActiveCredential("jane@example.com"),
		"validated user must be registered as active")
}

func TestValidateGoogleTokenInvalid(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("userinfo request failed with status 401")}
	h, _ := newTestHandler(t, verifier)

	handler := h.ValidateGoogleToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer ya29.bad")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "invalid_token", resp.Error)
	assert.Contains(t, resp.ErrorDescription, "re-authenticate")
}

func TestOptionalGoogleTokenPassesThroughWithoutHeader(t *testing.T) {
	h, _ := newTestHandler(t, &stubVerifier{err: errors.New("should not be called")})

	var called bool
	handler := h.OptionalGoogleToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := GetUserFromContext(r.Context()); ok {
			t.Error("no user info expected without a token")
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
}

func TestOptionalGoogleTokenInvalidPassesThrough(t *testing.T) {
	h, _ := newTestHandler(t, &stubVerifier{err: errors.New("userinfo request failed with status 401")})

	var called bool
	handler := h.OptionalGoogleToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called, "invalid token must not block the request; the resolver decides")
}

func TestTokenProvider(t *testing.T) {
	store := memory.New()
	defer store.Stop()

	provider := NewTokenProvider(store)
	require.NotNil(t, provider)

	ctx := context.Background()
	userID := "test-user@example.com"

	token := &oauth2.Token{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}

	err := provider.SaveToken(ctx, userID, token)
	require.NoError(t, err)

	retrieved, err := provider.GetTokenForAccount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, retrieved.AccessToken)
	assert.Equal(t, token.RefreshToken, retrieved.RefreshToken)

	assert.True(t, provider.HasTokenForAccount(userID))
	assert.False(t, provider.HasTokenForAccount("nobody@example.com"))

	_, err = provider.GetTokenForAccount(ctx, "nobody@example.com")
	assert.Error(t, err)
}

func TestParseTokenExpiry(t *testing.T) {
	tests := []struct {
		name  string
		value string
		check func(t *testing.T, got time.Time)
	}{
		{
			name:  "empty defaults to one hour",
			value: "",
			check: func(t *testing.T, got time.Time) {
				assert.WithinDuration(t, time.Now().Add(time.Hour), got, time.Minute)
			},
		},
		{
			name:  "invalid defaults to one hour",
			value: "not-a-time",
			check: func(t *testing.T, got time.Time) {
				assert.WithinDuration(t, time.Now().Add(time.Hour), got, time.Minute)
			},
		},
		{
			name:  "valid RFC3339",
			value: "2030-01-20T15:04:05Z",
			check: func(t *testing.T, got time.Time) {
				assert.Equal(t, 2030, got.Year())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, parseTokenExpiry(tt.value))
		})
	}
}
