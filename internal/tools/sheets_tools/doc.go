// Package sheets_tools exposes Google Sheets operations as MCP tools:
// spreadsheet discovery and inspection, range reads and writes in A1
// notation, spreadsheet and sheet creation, cell formatting, and
// conditional-formatting rule management (boolean and gradient rules).
package sheets_tools
