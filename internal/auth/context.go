package auth

import "context"

// contextKey is the type for context keys owned by this package.
type contextKey string

const (
	identityContextKey       contextKey = "resolved_identity"
	frameworkTokenContextKey contextKey = "framework_token"
	authorizationContextKey  contextKey = "authorization_header"
)

// WithIdentity returns a context carrying the resolved identity for the
// current request, readable by downstream tool handlers.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the identity resolved for this request,
// if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// WithFrameworkToken stores a token that an outer auth layer already
// validated, for the resolver to pick up as its highest-precedence source.
func WithFrameworkToken(ctx context.Context, token *FrameworkToken) context.Context {
	return context.WithValue(ctx, frameworkTokenContextKey, token)
}

// FrameworkTokenFromContext returns the pre-validated token, if any.
func FrameworkTokenFromContext(ctx context.Context) (*FrameworkToken, bool) {
	token, ok := ctx.Value(frameworkTokenContextKey).(*FrameworkToken)
	if !ok || token == nil {
		return nil, false
	}
	return token, true
}

// WithAuthorizationHeader stashes the raw Authorization header value into
// the context. The HTTP transport installs this via its context function
// so the resolver can inspect bearer credentials at tool-dispatch time.
func WithAuthorizationHeader(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, authorizationContextKey, header)
}

// AuthorizationHeaderFromContext returns the raw Authorization header
// value, if the transport recorded one.
func AuthorizationHeaderFromContext(ctx context.Context) string {
	header, _ := ctx.Value(authorizationContextKey).(string)
	return header
}
