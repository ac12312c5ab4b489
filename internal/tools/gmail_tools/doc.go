// Package gmail_tools exposes Gmail operations as MCP tools: message
// and thread search and retrieval (single and batch), sending, drafting
// and replying, label and filter management, and attachment download
// into the shared attachment store.
//
// Write operations are not registered when the server runs in read-only
// mode.
package gmail_tools
