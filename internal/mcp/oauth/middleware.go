package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/giantswarm/mcp-oauth/providers"
	"golang.org/x/oauth2"

	"github.com/workspace-mcp/workspace-mcp/internal/auth"
	"github.com/workspace-mcp/workspace-mcp/internal/logging"
)

// contextKey is the type for context keys
type contextKey string

const (
	// userContextKey is the key for storing the user info in the request context
	userContextKey contextKey = "oauth_user"

	// tokenContextKey is the key for storing the Google token in the request context
	tokenContextKey contextKey = "google_token"
)

// tokenStoreTimeout bounds writes to the token store on the hot path.
const tokenStoreTimeout = 5 * time.Second

// ValidateGoogleToken is middleware that requires a valid Google OAuth
// token on every request. It validates the token with the identity
// provider and stores the resulting user info in the request context as a
// framework-validated credential, so the tool-level resolver accepts it
// without re-verifying.
func (h *Handler) ValidateGoogleToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource"`,
				h.config.Resource,
			))
			h.writeUnauthorizedError(w, "missing_token", "Missing Authorization header")
			return
		}

		ctx, err := h.validateBearer(r.Context(), authHeader)
		if err != nil {
			errorDesc := actionableErrorMessage(err)
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource", error="invalid_token", error_description="%s"`,
				h.config.Resource,
				errorDesc,
			))
			h.writeUnauthorizedError(w, "invalid_token", errorDesc)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalGoogleToken is middleware that validates a Google OAuth token
// when one is present, and passes the request through untouched when it
// is not. An invalid token also passes through: the tool-level resolver
// runs its own chain and individual tools enforce authentication.
func (h *Handler) OptionalGoogleToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, err := h.validateBearer(r.Context(), authHeader)
		if err != nil {
			h.logger.Debug("Bearer token not validated at HTTP layer",
				logging.Err(err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateBearer verifies a bearer credential against the identity
// provider and returns a context carrying the validated user, the token,
// and the framework credential for the resolver. The token is persisted
// in the store and the user registered as holding an active credential.
func (h *Handler) validateBearer(ctx context.Context, authHeader string) (context.Context, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, fmt.Errorf("invalid Authorization header format")
	}
	accessToken := parts[1]

	verified, err := h.verifier.Verify(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if verified.Email == "" {
		return nil, fmt.Errorf("token carries no email")
	}

	token := &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		Expiry:      verified.ExpiresAt,
	}
	if token.Expiry.IsZero() {
		token.Expiry = time.Now().Add(time.Hour)
	}

	// Save the token for this user so Google API clients can be built
	// for them later in the request and in follow-up requests.
	storeCtx, cancel := context.WithTimeout(ctx, tokenStoreTimeout)
	saveErr := h.store.SaveToken(storeCtx, verified.Email, token)
	cancel()
	if saveErr != nil {
		h.logger.Warn("Failed to save Google token",
			logging.UserHash(verified.Email),
			logging.Err(saveErr))
	}

	if h.sessions != nil {
		h.sessions.RegisterCredential(verified.Email, token.Expiry)
	}

	userInfo := &providers.UserInfo{
		ID:            verified.Sub,
		Email:         verified.Email,
		EmailVerified: true,
	}

	ctx = ContextWithUserInfo(ctx, userInfo)
	ctx = context.WithValue(ctx, tokenContextKey, token)
	ctx = auth.WithFrameworkToken(ctx, &auth.FrameworkToken{
		Email: verified.Email,
		Sub:   verified.Sub,
	})
	return ctx, nil
}

// ContextWithUserInfo returns a context carrying the validated user info.
func ContextWithUserInfo(ctx context.Context, userInfo *providers.UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

// GetUserFromContext retrieves the validated user info from the request context.
func GetUserFromContext(ctx context.Context) (*providers.UserInfo, bool) {
	userInfo, ok := ctx.Value(userContextKey).(*providers.UserInfo)
	return userInfo, ok
}

// GetGoogleTokenFromContext retrieves the Google token from the request context.
func GetGoogleTokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	token, ok := ctx.Value(tokenContextKey).(*oauth2.Token)
	return token, ok
}

// actionableErrorMessage converts technical errors into user-friendly, actionable messages.
func actionableErrorMessage(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "401") || strings.Contains(errStr, "Unauthorized") {
		return "Google token is invalid or expired. Please re-authenticate through your MCP client to continue."
	}
	if strings.Contains(errStr, "403") || strings.Contains(errStr, "Forbidden") {
		return "Access denied by Google. Please ensure your token has the required scopes and re-authenticate through your MCP client."
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline") {
		return "Token validation timed out. Please try again."
	}
	return fmt.Sprintf("Token validation failed: %v", err)
}
