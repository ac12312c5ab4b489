// Package docs_tools exposes Google Docs operations as MCP tools:
// content retrieval as plain text or raw JSON, document creation, and
// batch editing through the operation builders in internal/docs.
package docs_tools
