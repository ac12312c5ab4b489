// Package server wires the MCP server to its transports: per-account
// Google client caching, the streamable-HTTP mux with OAuth validation,
// health probes, and the dedicated metrics listener.
package server
