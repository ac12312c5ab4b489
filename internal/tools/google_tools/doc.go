// Package google_tools exposes the OAuth bootstrap flow as MCP tools
// for stdio deployments: requesting a consent URL, exchanging the
// authorization code for a stored token, and listing authorized
// accounts. Successful authorization registers the account as an active
// credential for the stdio resolver fallbacks.
package google_tools
