package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

type recordingTokenProvider struct {
	token    *oauth2.Token
	err      error
	accounts []string
}

func (p *recordingTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	p.accounts = append(p.accounts, account)
	if p.err != nil {
		return nil, p.err
	}
	return p.token, nil
}

func (p *recordingTokenProvider) HasTokenForAccount(account string) bool {
	return p.err == nil
}

func TestClientConstructionUsesTokenProvider(t *testing.T) {
	sc := NewServerContext(context.Background(), nil)
	defer func() {
		if err := sc.Shutdown(); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	}()

	provider := &recordingTokenProvider{
		token: &oauth2.Token{AccessToken: "ya29.live", Expiry: time.Now().Add(time.Hour)},
	}
	sc.SetTokenProvider(provider)

	// No token file exists for this account; the client must be built
	// from the provider's token alone.
	client, err := sc.GmailClientForAccount("bearer-user@example.com")
	if err != nil {
		t.Fatalf("GmailClientForAccount with provider token: %v", err)
	}
	if client.Account() != "bearer-user@example.com" {
		t.Errorf("client account = %q, want %q", client.Account(), "bearer-user@example.com")
	}
	if len(provider.accounts) != 1 || provider.accounts[0] != "bearer-user@example.com" {
		t.Errorf("provider consulted for %v, want the requested account once", provider.accounts)
	}

	// Second lookup is served from the cache.
	if _, err := sc.GmailClientForAccount("bearer-user@example.com"); err != nil {
		t.Fatalf("cached lookup failed: %v", err)
	}
	if len(provider.accounts) != 1 {
		t.Errorf("provider consulted %d times, want 1 (cache hit expected)", len(provider.accounts))
	}
}

func TestClientConstructionPropagatesProviderError(t *testing.T) {
	sc := NewServerContext(context.Background(), nil)
	defer func() {
		if err := sc.Shutdown(); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	}()

	sentinel := errors.New("no token in store")
	sc.SetTokenProvider(&recordingTokenProvider{err: sentinel})

	if _, err := sc.DriveClientForAccount("nobody@example.com"); !errors.Is(err, sentinel) {
		t.Errorf("expected provider error to propagate, got %v", err)
	}
}

func TestInvalidateAccountForcesRebuild(t *testing.T) {
	sc := NewServerContext(context.Background(), nil)
	defer func() {
		if err := sc.Shutdown(); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	}()

	provider := &recordingTokenProvider{
		token: &oauth2.Token{AccessToken: "ya29.live", Expiry: time.Now().Add(time.Hour)},
	}
	sc.SetTokenProvider(provider)

	if _, err := sc.DocsClientForAccount("user@example.com"); err != nil {
		t.Fatalf("initial client build failed: %v", err)
	}
	sc.InvalidateAccount("user@example.com")
	if _, err := sc.DocsClientForAccount("user@example.com"); err != nil {
		t.Fatalf("rebuild after invalidation failed: %v", err)
	}
	if len(provider.accounts) != 2 {
		t.Errorf("provider consulted %d times, want 2 (rebuild after invalidation)", len(provider.accounts))
	}
}
