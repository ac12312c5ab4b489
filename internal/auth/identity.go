package auth

import "time"

// Method identifies which credential source produced a resolved identity.
// The value is carried in logs and metrics, so keep these stable.
type Method string

const (
	MethodFrameworkToken       Method = "framework_token"
	MethodBearerOpaque         Method = "bearer_opaque"
	MethodBearerSelfIssued     Method = "bearer_self_issued"
	MethodStdioExplicitSession Method = "stdio_explicit_session"
	MethodStdioSingleSession   Method = "stdio_single_session"
	MethodSessionBinding       Method = "session_binding"
)

// Identity is the outcome of authentication resolution for one request.
// It is constructed fresh per request and never mutated after being set:
// once a credential source resolves, no later source in the chain runs.
type Identity struct {
	// Email is the canonical user identifier. Always non-empty on a
	// resolved identity.
	Email string

	// Method records which credential source resolved the request.
	Method Method

	// Token holds the verified token record for sources that produce
	// one (bearer paths). Nil for session and stdio based resolution.
	Token *TokenRecord
}

// TokenRecord represents an externally issued access token after
// verification, or a self-issued token after claim extraction. Fields the
// verifier did not supply carry documented defaults rather than being
// probed for at the call site.
type TokenRecord struct {
	Token     string
	ClientID  string
	Scopes    []string
	SessionID string
	ExpiresAt time.Time
	Claims    map[string]any
	Sub       string
	Email     string
}

// FrameworkToken is a token already validated by an outer auth layer
// (e.g. the HTTP OAuth middleware) before the resolver runs. Email may be
// set directly or recoverable from Claims.
type FrameworkToken struct {
	Email  string
	Sub    string
	Claims map[string]any
}

// ResolvedEmail returns the email carried by the framework token, falling
// back to the email claim when the field itself is unset.
func (t *FrameworkToken) ResolvedEmail() string {
	if t == nil {
		return ""
	}
	if t.Email != "" {
		return t.Email
	}
	if email, ok := t.Claims["email"].(string); ok {
		return email
	}
	return ""
}
