package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"

	"github.com/workspace-mcp/workspace-mcp/internal/google"
)

// TokenProvider implements google.TokenProvider using the mcp-oauth
// library's storage. It bridges tokens captured by the HTTP middleware to
// the Google API client construction in the server context. An optional
// fallback provider covers accounts that authenticated out of band, e.g.
// through the auth-code tool flow backed by local token files.
type TokenProvider struct {
	store    storage.TokenStore
	fallback google.TokenProvider
}

// NewTokenProvider creates a token provider from an mcp-oauth TokenStore.
func NewTokenProvider(store storage.TokenStore) *TokenProvider {
	return &TokenProvider{
		store: store,
	}
}

// NewTokenProviderWithFallback creates a token provider that consults the
// fallback provider when the store has no token for an account.
func NewTokenProviderWithFallback(store storage.TokenStore, fallback google.TokenProvider) *TokenProvider {
	return &TokenProvider{
		store:    store,
		fallback: fallback,
	}
}

// GetTokenForAccount retrieves a Google OAuth token for the specified
// account. A user validated on the current request takes precedence over
// the account name, so tools follow the caller's identity by default.
func (p *TokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if userInfo, ok := GetUserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		if token, err := p.store.GetToken(ctx, userInfo.Email); err == nil {
			return token, nil
		}
	}

	if token, err := p.store.GetToken(ctx, account); err == nil {
		return token, nil
	}

	if p.fallback != nil {
		if token, err := p.fallback.GetTokenForAccount(ctx, account); err == nil {
			return token, nil
		}
	}

	return nil, fmt.Errorf("no Google OAuth token found for account %s. Please authenticate with Google through your MCP client", account)
}

// HasTokenForAccount checks if a token exists for the specified account.
func (p *TokenProvider) HasTokenForAccount(account string) bool {
	if _, err := p.store.GetToken(context.Background(), account); err == nil {
		return true
	}
	return p.fallback != nil && p.fallback.HasTokenForAccount(account)
}

// SaveToken saves a Google OAuth token for the given user, used when
// tokens are refreshed or initially acquired.
func (p *TokenProvider) SaveToken(ctx context.Context, userID string, token *oauth2.Token) error {
	return p.store.SaveToken(ctx, userID, token)
}
