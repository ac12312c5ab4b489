// Package auth resolves the calling user's identity for each tool
// invocation.
//
// A single precedence chain multiplexes the independent credential
// sources a request may carry: a token an outer layer already validated,
// a raw bearer credential (opaque Google access token or locally
// decodable self-issued token), the session store's single-user stdio
// fallbacks, and a prior MCP-session-to-user binding. The first source to
// succeed wins; every source swallows its own failures so a bad
// credential in one never blocks the next. Exhausting the chain leaves
// the request unauthenticated, which is a valid state: individual tool
// handlers decide whether the operation they implement requires an
// identity.
package auth
