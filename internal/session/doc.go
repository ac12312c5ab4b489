// Package session tracks active Google credentials per user and the
// binding of MCP sessions to users.
//
// The store serves two purposes: in stdio (single-user) mode it answers
// "which user is authenticated right now" without any request credential,
// and in HTTP mode it lets a session that authenticated once keep its
// identity across requests.
package session
