// Package oauth provides adapters for integrating the
// github.com/giantswarm/mcp-oauth library with the HTTP transport: bearer
// token validation for the MCP endpoint, RFC 9728 protected resource
// metadata, SSO access-token forwarding, and a token provider bridging
// the library's storage to Google API client construction.
package oauth
