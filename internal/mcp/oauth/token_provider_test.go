package oauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/providers"
	"github.com/giantswarm/mcp-oauth/storage/memory"
)

type stubGoogleProvider struct {
	tokens map[string]*oauth2.Token
}

func (p *stubGoogleProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if token, ok := p.tokens[account]; ok {
		return token, nil
	}
	return nil, errors.New("no token")
}

func (p *stubGoogleProvider) HasTokenForAccount(account string) bool {
	_, ok := p.tokens[account]
	return ok
}

func TestTokenProviderReadsStoredToken(t *testing.T) {
	store := memory.New()
	t.Cleanup(store.Stop)

	stored := &oauth2.Token{AccessToken: "ya29.stored", Expiry: time.Now().Add(time.Hour)}
	require.NoError(t, store.SaveToken(context.Background(), "user@example.com", stored))

	p := NewTokenProvider(store)

	token, err := p.GetTokenForAccount(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ya29.stored", token.AccessToken)
	assert.True(t, p.HasTokenForAccount("user@example.com"))
}

func TestTokenProviderFallsBackWhenStoreMisses(t *testing.T) {
	store := memory.New()
	t.Cleanup(store.Stop)

	fallback := &stubGoogleProvider{tokens: map[string]*oauth2.Token{
		"offline@example.com": {AccessToken: "ya29.file", Expiry: time.Now().Add(time.Hour)},
	}}
	p := NewTokenProviderWithFallback(store, fallback)

	token, err := p.GetTokenForAccount(context.Background(), "offline@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ya29.file", token.AccessToken)
	assert.True(t, p.HasTokenForAccount("offline@example.com"))
}

func TestTokenProviderStoreWinsOverFallback(t *testing.T) {
	store := memory.New()
	t.Cleanup(store.Stop)

	require.NoError(t, store.SaveToken(context.Background(), "user@example.com",
		&oauth2.Token{AccessToken: "ya29.stored", Expiry: time.Now().Add(time.Hour)}))

	fallback := &stubGoogleProvider{tokens: map[string]*oauth2.Token{
		"user@example.com": {AccessToken: "ya29.file", Expiry: time.Now().Add(time.Hour)},
	}}
	p := NewTokenProviderWithFallback(store, fallback)

	token, err := p.GetTokenForAccount(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ya29.stored", token.AccessToken)
}

func TestTokenProviderErrorsWhenNoSourceHasToken(t *testing.T) {
	store := memory.New()
	t.Cleanup(store.Stop)

	p := NewTokenProviderWithFallback(store, &stubGoogleProvider{})

	_, err := p.GetTokenForAccount(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Google OAuth token found")
	assert.False(t, p.HasTokenForAccount("nobody@example.com"))
}

func TestTokenProviderContextUserWinsOverAccount(t *testing.T) {
	store := memory.New()
	t.Cleanup(store.Stop)

	require.NoError(t, store.SaveToken(context.Background(), "caller@example.com",
		&oauth2.Token{AccessToken: "ya29.caller", Expiry: time.Now().Add(time.Hour)}))
	require.NoError(t, store.SaveToken(context.Background(), "other@example.com",
		&oauth2.Token{AccessToken: "ya29.other", Expiry: time.Now().Add(time.Hour)}))

	ctx := ContextWithUserInfo(context.Background(), &providers.UserInfo{
		ID:            "sub-1",
		Email:         "caller@example.com",
		EmailVerified: true,
	})

	p := NewTokenProvider(store)
	token, err := p.GetTokenForAccount(ctx, "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ya29.caller", token.AccessToken)
}
