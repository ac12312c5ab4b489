package oauth

import "log/slog"

// Config holds the OAuth integration configuration for the HTTP transport.
type Config struct {
	// Resource is the MCP server resource identifier (RFC 8707), the
	// base URL of this server.
	Resource string

	// AuthorizationServers lists the authorization servers advertised in
	// the protected resource metadata. Defaults to Google's.
	AuthorizationServers []string

	// SupportedScopes are the Google API scopes this resource understands.
	SupportedScopes []string

	// Logger for structured logging (optional, uses default if not provided).
	Logger *slog.Logger
}

// googleAuthorizationServer is advertised when the deployment does not
// run its own authorization server in front of Google.
const googleAuthorizationServer = "https://accounts.google.com"

func (c *Config) authorizationServers() []string {
	if len(c.AuthorizationServers) > 0 {
		return c.AuthorizationServers
	}
	return []string{googleAuthorizationServer}
}
