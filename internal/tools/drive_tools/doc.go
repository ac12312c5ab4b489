// Package drive_tools exposes Google Drive operations as MCP tools:
// search (free text or structured queries), folder listing with shortcut
// resolution, content retrieval with Google-native export, file creation
// from inline content or a URL, metadata updates, and permission
// inspection.
package drive_tools
