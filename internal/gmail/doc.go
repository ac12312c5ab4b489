// Package gmail wraps the Gmail API for the MCP tool surface: message
// search and retrieval, MIME body and attachment extraction, sending and
// drafting, and label and filter management.
package gmail
