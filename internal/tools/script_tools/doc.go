// Package script_tools exposes Apps Script operations as MCP tools:
// project discovery (via Drive; the Apps Script API has no listing
// endpoint), project and source management, function execution,
// versioning, deployments and process inspection.
package script_tools
