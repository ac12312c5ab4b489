package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is the account name used when the caller does not name one.
const DefaultAccount = "default"

// cacheSubdir is the directory under the user cache dir holding token files.
const cacheSubdir = "workspace-mcp"

// GetOAuthConfig returns the OAuth2 configuration for all Google services.
// Client credentials come from the environment so deployments can bring
// their own OAuth client.
func GetOAuthConfig() (*oauth2.Config, error) {
	clientID := os.Getenv("GOOGLE_OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET must be set")
	}

	redirectURL := os.Getenv("GOOGLE_OAUTH_REDIRECT_URI")
	if redirectURL == "" {
		redirectURL = "http://localhost:8000/oauth2callback"
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       DefaultOAuthScopes,
	}, nil
}

// GetAuthURL returns the OAuth URL for user authorization.
func GetAuthURL(state string) (string, error) {
	conf, err := GetOAuthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// tokenFileForAccount returns the path of the token file for an account.
// Account names are emails; slashes cannot occur, but be strict anyway.
func tokenFileForAccount(account string) string {
	if account == "" {
		account = DefaultAccount
	}
	safe := strings.ReplaceAll(account, string(filepath.Separator), "_")
	return filepath.Join(userCacheDir(), cacheSubdir, "google-"+safe+".json")
}

// HasTokenForAccount checks if a stored OAuth token exists for the account.
func HasTokenForAccount(account string) bool {
	_, err := os.Stat(tokenFileForAccount(account))
	return err == nil
}

// SaveTokenForAccount exchanges an authorization code for tokens and
// stores them for the account.
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	conf, err := GetOAuthConfig()
	if err != nil {
		return err
	}

	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return WriteTokenForAccount(account, token)
}

// WriteTokenForAccount persists an already-obtained token for the account.
func WriteTokenForAccount(account string, token *oauth2.Token) error {
	tokenFile := tokenFileForAccount(account)
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(tokenFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// RemoveTokenForAccount deletes the stored token for the account.
func RemoveTokenForAccount(account string) error {
	err := os.Remove(tokenFileForAccount(account))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// ListAccounts returns the accounts with stored tokens.
func ListAccounts() ([]string, error) {
	dir := filepath.Join(userCacheDir(), cacheSubdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token directory: %w", err)
	}

	var accounts []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "google-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		accounts = append(accounts, strings.TrimSuffix(strings.TrimPrefix(name, "google-"), ".json"))
	}
	return accounts, nil
}

// GetTokenSourceForAccount returns an OAuth2 token source for the stored
// token of an account. Returns an error if no valid token exists.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	conf, err := GetOAuthConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(tokenFileForAccount(account))
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %q", account)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token format: %w", err)
	}

	return conf.TokenSource(ctx, &token), nil
}

// GetHTTPClientForAccount returns an HTTP client configured with OAuth2
// authentication for the account. The client is configured to use HTTP/1.1
// to avoid HTTP/2 protocol errors with some Google endpoints.
func GetHTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return httpClientForTokenSource(ctx, ts), nil
}

// GetHTTPClientForAccountWithProvider returns an HTTP client whose token
// comes from the given provider. A nil provider falls back to the local
// token files. When OAuth client credentials are configured the token is
// refreshed through them; otherwise it is used as-is until it expires.
func GetHTTPClientForAccountWithProvider(ctx context.Context, account string, provider TokenProvider) (*http.Client, error) {
	if provider == nil {
		return GetHTTPClientForAccount(ctx, account)
	}

	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	if conf, err := GetOAuthConfig(); err == nil {
		return httpClientForTokenSource(ctx, conf.TokenSource(ctx, token)), nil
	}
	return HTTPClientForToken(ctx, token), nil
}

// HTTPClientForToken returns an HTTP client for an already-held token,
// e.g. one presented as a bearer credential on the current request.
func HTTPClientForToken(ctx context.Context, token *oauth2.Token) *http.Client {
	return httpClientForTokenSource(ctx, oauth2.StaticTokenSource(token))
}

func httpClientForTokenSource(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}

	return client
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
