package google

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestGetOAuthConfigRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_CLIENT_ID", "")
	t.Setenv("GOOGLE_OAUTH_CLIENT_SECRET", "")

	if _, err := GetOAuthConfig(); err == nil {
		t.Error("expected error without client credentials")
	}
}

func TestGetOAuthConfig(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_OAUTH_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_OAUTH_REDIRECT_URI", "")

	conf, err := GetOAuthConfig()
	if err != nil {
		t.Fatalf("GetOAuthConfig() error = %v", err)
	}
	if conf.ClientID != "client-id" {
		t.Errorf("ClientID = %q, want %q", conf.ClientID, "client-id")
	}
	if conf.RedirectURL != "http://localhost:8000/oauth2callback" {
		t.Errorf("RedirectURL = %q, want default callback", conf.RedirectURL)
	}
	if len(conf.Scopes) == 0 {
		t.Error("expected default scopes to be set")
	}
}

func TestGetAuthURL(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_OAUTH_CLIENT_SECRET", "client-secret")

	url, err := GetAuthURL("state-123")
	if err != nil {
		t.Fatalf("GetAuthURL() error = %v", err)
	}
	if !strings.Contains(url, "state=state-123") {
		t.Errorf("auth URL missing state: %q", url)
	}
	if !strings.Contains(url, "access_type=offline") {
		t.Errorf("auth URL missing offline access type: %q", url)
	}
}

func TestTokenFileForAccount(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	tests := []struct {
		account string
		want    string
	}{
		{"", "google-default.json"},
		{"jane@example.com", "google-jane@example.com.json"},
	}

	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			got := tokenFileForAccount(tt.account)
			if filepath.Base(got) != tt.want {
				t.Errorf("tokenFileForAccount(%q) = %q, want base %q", tt.account, got, tt.want)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("GOOGLE_OAUTH_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_OAUTH_CLIENT_SECRET", "client-secret")

	account := "jane@example.com"
	if HasTokenForAccount(account) {
		t.Fatal("expected no token before write")
	}

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := WriteTokenForAccount(account, token); err != nil {
		t.Fatalf("WriteTokenForAccount() error = %v", err)
	}

	if !HasTokenForAccount(account) {
		t.Error("expected token after write")
	}

	accounts, err := ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 1 || accounts[0] != account {
		t.Errorf("ListAccounts() = %v, want [%s]", accounts, account)
	}

	ts, err := GetTokenSourceForAccount(t.Context(), account)
	if err != nil {
		t.Fatalf("GetTokenSourceForAccount() error = %v", err)
	}
	got, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got.AccessToken != "access" {
		t.Errorf("AccessToken = %q, want %q", got.AccessToken, "access")
	}

	if err := RemoveTokenForAccount(account); err != nil {
		t.Fatalf("RemoveTokenForAccount() error = %v", err)
	}
	if HasTokenForAccount(account) {
		t.Error("expected no token after removal")
	}
	if err := RemoveTokenForAccount(account); err != nil {
		t.Errorf("removing a missing token should not error, got %v", err)
	}
}

func TestListAccountsEmptyDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	accounts, err := ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("ListAccounts() = %v, want empty", accounts)
	}
}
