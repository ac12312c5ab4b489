package oauth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/giantswarm/mcp-oauth/storage"
	"golang.org/x/oauth2"

	"github.com/workspace-mcp/workspace-mcp/internal/logging"
)

const (
	// SSOAccessTokenHeader is the HTTP header name for forwarded Google
	// access tokens. When SSO token forwarding is enabled, an upstream
	// aggregator forwards the user's Google access token in this header
	// alongside the ID token in the Authorization header. The ID token
	// proves identity, the access token provides Google API access.
	SSOAccessTokenHeader = "X-Google-Access-Token"

	// SSORefreshTokenHeader is the optional header for forwarded Google
	// refresh tokens. If provided, enables automatic token refresh for
	// long-running sessions.
	SSORefreshTokenHeader = "X-Google-Refresh-Token"

	// SSOTokenExpiryHeader is the optional header carrying the access
	// token expiry in RFC3339. Without it a 1 hour expiry is assumed.
	SSOTokenExpiryHeader = "X-Google-Token-Expiry"

	// defaultAccessTokenExpiry matches Google's usual access token lifetime.
	defaultAccessTokenExpiry = 1 * time.Hour
)

// SSOMetricsRecorder records SSO token injection outcomes without the
// middleware depending on the full metrics type.
type SSOMetricsRecorder interface {
	RecordSSOTokenInjection(ctx context.Context, result string)
}

// SSOMiddlewareConfig holds configuration for the SSO access token middleware.
type SSOMiddlewareConfig struct {
	// Store is the token store to save forwarded access tokens
	Store storage.TokenStore

	// Logger for audit and debug logging (optional, uses slog.Default if nil)
	Logger *slog.Logger

	// Metrics for recording SSO token injection metrics (optional)
	Metrics SSOMetricsRecorder
}

// SSO injection results for metrics labels.
const (
	SSOInjectionResultSuccess     = "success"
	SSOInjectionResultStored      = "stored"
	SSOInjectionResultNoUser      = "no_user"
	SSOInjectionResultNoToken     = "no_token"
	SSOInjectionResultStoreFailed = "store_failed"
)

// SSOAccessTokenMiddleware creates middleware that extracts and stores
// forwarded Google access tokens. It should wrap handlers already
// protected by OAuth validation: the upstream aggregator authenticates
// the user, forwards the ID token in the Authorization header and the
// Google access token in X-Google-Access-Token, and this middleware
// stores the access token for Google API calls and injects it into the
// request context.
func SSOAccessTokenMiddleware(config *SSOMiddlewareConfig) func(http.Handler) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	recordMetric := func(ctx context.Context, result string) {
		if config.Metrics != nil {
			config.Metrics.RecordSSOTokenInjection(ctx, result)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// User must have been authenticated by the OAuth middleware.
			userInfo, ok := GetUserFromContext(ctx)
			if !ok || userInfo == nil || userInfo.Email == "" {
				recordMetric(ctx, SSOInjectionResultNoUser)
				next.ServeHTTP(w, r)
				return
			}

			accessToken := r.Header.Get(SSOAccessTokenHeader)
			if accessToken == "" {
				// Normal flow, user authenticated directly with this server.
				recordMetric(ctx, SSOInjectionResultNoToken)
				next.ServeHTTP(w, r)
				return
			}

			refreshToken := r.Header.Get(SSORefreshTokenHeader)
			expiry := parseTokenExpiry(r.Header.Get(SSOTokenExpiryHeader))

			token := &oauth2.Token{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
				TokenType:    "Bearer",
				Expiry:       expiry,
			}

			storeCtx, cancel := context.WithTimeout(ctx, tokenStoreTimeout)
			storeErr := config.Store.SaveToken(storeCtx, userInfo.Email, token)
			cancel()

			if storeErr != nil {
				logger.Error("Failed to store forwarded SSO access token",
					logging.UserHash(userInfo.Email),
					logging.Err(storeErr))
				recordMetric(ctx, SSOInjectionResultStoreFailed)
				// Continue anyway - the token can still travel via context.
			} else {
				logger.Info("Stored forwarded SSO access token",
					logging.UserHash(userInfo.Email),
					"has_refresh_token", refreshToken != "",
					"expires_in", time.Until(expiry).Round(time.Second).String(),
					"is_sso", userInfo.IsSSO())
			}

			ctx = ContextWithGoogleAccessToken(ctx, accessToken)
			r = r.WithContext(ctx)

			if userInfo.IsSSO() {
				recordMetric(ctx, SSOInjectionResultSuccess)
			} else if storeErr == nil {
				recordMetric(ctx, SSOInjectionResultStored)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// accessTokenContextKey carries a forwarded Google access token through
// the request lifecycle.
const accessTokenContextKey contextKey = "google_access_token"

// ContextWithGoogleAccessToken returns a context carrying a forwarded
// Google access token.
func ContextWithGoogleAccessToken(ctx context.Context, accessToken string) context.Context {
	return context.WithValue(ctx, accessTokenContextKey, accessToken)
}

// GetGoogleAccessTokenFromContext retrieves a forwarded Google access
// token, if one was injected for this request.
func GetGoogleAccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenContextKey).(string)
	return token, ok && token != ""
}

// parseTokenExpiry parses the token expiry header value, defaulting to
// one hour from now when the value is empty or invalid.
func parseTokenExpiry(expiryStr string) time.Time {
	if expiryStr == "" {
		return time.Now().Add(defaultAccessTokenExpiry)
	}
	expiry, err := time.Parse(time.RFC3339, expiryStr)
	if err != nil {
		return time.Now().Add(defaultAccessTokenExpiry)
	}
	return expiry
}
