package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/workspace-mcp/workspace-mcp/internal/logging"
)

// opaqueTokenPrefix marks Google-issued opaque access tokens. Tokens with
// this prefix cannot be decoded locally and must be verified against the
// identity provider.
const opaqueTokenPrefix = "ya29."

// SessionStore is the session-tracking contract the resolver depends on.
// Implemented by session.Store.
type SessionStore interface {
	HasActiveCredential(email string) bool
	SingleActiveUser() (string, bool)
	BindSession(sessionID, email string)
	UserForSession(sessionID string) (string, bool)
}

// Request carries the per-request inputs the resolver inspects. All
// fields are optional; an empty Request resolves to no identity.
type Request struct {
	// FrameworkToken is a token an outer auth layer already validated.
	FrameworkToken *FrameworkToken

	// AuthorizationHeader is the raw Authorization header value, if the
	// transport carries one.
	AuthorizationHeader string

	// ExplicitUser is a caller-supplied target user (the
	// user_google_email tool argument).
	ExplicitUser string

	// MCPSessionID identifies the MCP protocol session, when the
	// transport has one.
	MCPSessionID string
}

// Resolver multiplexes independent credential sources into at most one
// resolved identity per request. Sources are tried in a fixed precedence
// order and the first to succeed wins; a source failure is swallowed and
// the chain moves on. Exhausting the chain is not an error: unresolved is
// a valid terminal state, enforced (or not) by each tool handler.
type Resolver struct {
	verifier       TokenVerifier
	sessions       SessionStore
	singleUserMode bool
	logger         *slog.Logger
}

// NewResolver constructs a resolver. singleUserMode gates the stdio
// fallback sources: they are never consulted in multi-user deployments,
// which is a security boundary rather than an optimization.
func NewResolver(verifier TokenVerifier, sessions SessionStore, singleUserMode bool, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		verifier:       verifier,
		sessions:       sessions,
		singleUserMode: singleUserMode,
		logger:         logger,
	}
}

// source is one credential source in the precedence chain. A nil return
// means the source could not resolve the request and the next one runs.
type source struct {
	name    string
	resolve func(ctx context.Context, req Request) *Identity
}

// Resolve runs the precedence chain and returns the resolved identity,
// or nil when no source succeeds. The chain runs at most once per request
// and the result is never revised by a later source.
func (r *Resolver) Resolve(ctx context.Context, req Request) *Identity {
	sources := []source{
		{"framework_token", r.fromFrameworkToken},
		{"bearer_header", r.fromBearerHeader},
		{"stdio_session", r.fromStdioSession},
		{"session_binding", r.fromSessionBinding},
	}

	for _, src := range sources {
		if id := src.resolve(ctx, req); id != nil {
			r.logger.Debug("Resolved request identity",
				logging.AuthMethod(string(id.Method)),
				logging.UserHash(id.Email))
			return id
		}
	}

	r.logger.Debug("No credential source resolved the request")
	return nil
}

// fromFrameworkToken accepts a token the request pipeline already
// verified, when it carries or maps to an email.
func (r *Resolver) fromFrameworkToken(_ context.Context, req Request) *Identity {
	email := req.FrameworkToken.ResolvedEmail()
	if email == "" {
		return nil
	}
	return &Identity{
		Email:  email,
		Method: MethodFrameworkToken,
		Token: &TokenRecord{
			ClientID: DefaultClientID,
			Claims:   req.FrameworkToken.Claims,
			Sub:      req.FrameworkToken.Sub,
			Email:    email,
		},
	}
}

// fromBearerHeader classifies a raw bearer credential: opaque provider
// tokens are verified externally, anything else is treated as a
// self-issued token and decoded locally.
func (r *Resolver) fromBearerHeader(ctx context.Context, req Request) *Identity {
	token, ok := bearerToken(req.AuthorizationHeader)
	if !ok {
		return nil
	}

	if strings.HasPrefix(token, opaqueTokenPrefix) {
		return r.fromOpaqueToken(ctx, req, token)
	}
	return r.fromSelfIssuedToken(req, token)
}

// fromOpaqueToken verifies a provider-issued access token against the
// identity provider. On success the MCP session (if any) is bound to the
// resolved user so later requests in the session resolve without a token.
func (r *Resolver) fromOpaqueToken(ctx context.Context, req Request, token string) *Identity {
	if r.verifier == nil {
		return nil
	}

	verified, err := r.verifier.Verify(ctx, token)
	if err != nil {
		r.logger.Debug("Opaque token verification failed",
			"token", logging.SanitizeToken(token),
			logging.Err(err))
		return nil
	}
	if verified == nil || verified.Email == "" {
		r.logger.Debug("Opaque token verified but carries no email",
			"token", logging.SanitizeToken(token))
		return nil
	}

	rec := &TokenRecord{
		Token:     token,
		ClientID:  verified.ClientID,
		Scopes:    verified.Scopes,
		SessionID: opaqueSessionID(token),
		ExpiresAt: verified.ExpiresAt,
		Sub:       verified.Sub,
		Email:     verified.Email,
	}
	if rec.ClientID == "" {
		rec.ClientID = DefaultClientID
	}
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = time.Now().Add(time.Hour)
	}

	if req.MCPSessionID != "" && r.sessions != nil {
		r.sessions.BindSession(req.MCPSessionID, verified.Email)
	}

	return &Identity{
		Email:  verified.Email,
		Method: MethodBearerOpaque,
		Token:  rec,
	}
}

// fromSelfIssuedToken decodes a non-opaque bearer token locally. Decode
// failures and missing identity claims fall through to the next source.
func (r *Resolver) fromSelfIssuedToken(req Request, token string) *Identity {
	rec, err := decodeSelfIssuedToken(token)
	if err != nil {
		r.logger.Debug("Self-issued token not usable",
			"token", logging.SanitizeToken(token),
			logging.Err(err))
		return nil
	}
	return &Identity{
		Email:  rec.Email,
		Method: MethodBearerSelfIssued,
		Token:  rec,
	}
}

// fromStdioSession resolves via the session store in single-user
// deployments: an explicitly named user with an active credential wins,
// otherwise the store's single active user, if there is exactly one.
// Ambiguity (zero or multiple active users) must not guess.
func (r *Resolver) fromStdioSession(_ context.Context, req Request) *Identity {
	if !r.singleUserMode || r.sessions == nil {
		return nil
	}

	if req.ExplicitUser != "" && r.sessions.HasActiveCredential(req.ExplicitUser) {
		return &Identity{
			Email:  req.ExplicitUser,
			Method: MethodStdioExplicitSession,
		}
	}

	if email, ok := r.sessions.SingleActiveUser(); ok {
		return &Identity{
			Email:  email,
			Method: MethodStdioSingleSession,
		}
	}
	return nil
}

// fromSessionBinding resolves via a binding a previous request in the
// same MCP session established.
func (r *Resolver) fromSessionBinding(_ context.Context, req Request) *Identity {
	if req.MCPSessionID == "" || r.sessions == nil {
		return nil
	}
	email, ok := r.sessions.UserForSession(req.MCPSessionID)
	if !ok {
		return nil
	}
	return &Identity{
		Email:  email,
		Method: MethodSessionBinding,
	}
}

// bearerToken extracts the credential from an Authorization header value,
// accepting only the Bearer scheme.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// opaqueSessionID derives a stable provider session identifier from an
// opaque token without retaining the full credential.
func opaqueSessionID(token string) string {
	const prefix = "google_oauth_"
	if len(token) < 8 {
		return prefix + token
	}
	return prefix + token[:8]
}
